package indexing

import (
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/StatTag/StatWrap-sub000/internal/tagging"
	"github.com/StatTag/StatWrap-sub000/model"
)

// PreviewLength is the number of characters of body text kept in Item.Preview.
const PreviewLength = 300

// ProjectDocuments derives every non-file document for a project: the project
// itself, people, notes, assets, external assets and asset groups.
func ProjectDocuments(p model.Project) []model.Document {
	docs := []model.Document{projectDocument(p)}

	for i, note := range p.Notes {
		docs = append(docs, noteDocument(p, "project", p.Name, p.ID, i, note))
	}

	for i, person := range p.People {
		key := entityKey(person.ID, i)
		docs = append(docs, personDocument(p, key, person))
		for j, note := range person.Notes {
			docs = append(docs, noteDocument(p, "person", personTitle(person), key, j, note))
		}
	}

	docs = append(docs, assetDocuments(p, p.Assets, model.TypeAsset)...)
	docs = append(docs, assetDocuments(p, p.ExternalAssets, model.TypeExternalAsset)...)

	for i, group := range p.AssetGroups {
		docs = append(docs, assetGroupDocument(p, entityKey(group.ID, i), group))
	}
	return docs
}

// entityKey identifies a person, note or asset group within its list. Entries
// without an id fall back to their position so they never share a document id.
func entityKey(id string, position int) string {
	if id != "" {
		return id
	}
	return "#" + strconv.Itoa(position)
}

func projectDocument(p model.Project) model.Document {
	parts := []string{p.Name, p.Description, strings.Join(p.Categories, " ")}
	for _, note := range p.Notes {
		parts = append(parts, note.Content)
	}
	content := joinNonEmpty(parts...)

	return model.Document{
		ID:        model.NewDocumentID(model.TypeProject, p.ID, ""),
		Type:      model.TypeProject,
		Title:     p.Name,
		Content:   content,
		Tags:      tagging.GenerateTags(content, model.TypeProject, ""),
		ProjectID: p.ID,
		Metadata: metadataJSON(map[string]any{
			"peopleCount":     len(p.People),
			"notesCount":      len(p.Notes),
			"assetGroupCount": len(p.AssetGroups),
			"categories":      model.NonEmpty(p.Categories),
		}),
		Item: model.Item{
			ID:          p.ID,
			Name:        p.Name,
			Type:        string(model.TypeProject),
			Path:        p.Path,
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Description: p.Description,
			Preview:     truncate(p.Description, PreviewLength),
			Categories:  model.NonEmpty(append([]string(nil), p.Categories...)),
		},
	}
}

func personTitle(person model.Person) string {
	if name := person.Name.Display(); name != "" {
		return name
	}
	return person.ID
}

func personDocument(p model.Project, key string, person model.Person) model.Document {
	title := personTitle(person)
	parts := []string{title, person.Affiliation, strings.Join(person.Roles, " ")}
	for _, note := range person.Notes {
		parts = append(parts, note.Content)
	}
	content := joinNonEmpty(parts...)

	return model.Document{
		ID:        model.NewDocumentID(model.TypePerson, p.ID, key),
		Type:      model.TypePerson,
		Title:     title,
		Content:   content,
		Tags:      tagging.GenerateTags(content, model.TypePerson, ""),
		ProjectID: p.ID,
		Metadata:  metadataJSON(map[string]any{"notesCount": len(person.Notes), "roles": model.NonEmpty(person.Roles)}),
		Item: model.Item{
			ID:          person.ID,
			Name:        title,
			Type:        string(model.TypePerson),
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Affiliation: person.Affiliation,
			Roles:       model.NonEmpty(append([]string(nil), person.Roles...)),
		},
	}
}

func noteDocument(p model.Project, entityType, entityName, entityID string, position int, note model.Note) model.Document {
	title := "Note: " + entityName
	return model.Document{
		ID:        model.NewDocumentID(model.TypeNote, p.ID, entityType+":"+entityID+":"+entityKey(note.ID, position)),
		Type:      model.TypeNote,
		Title:     title,
		Content:   note.Content,
		Tags:      tagging.GenerateTags(note.Content, model.TypeNote, ""),
		ProjectID: p.ID,
		Metadata:  metadataJSON(map[string]any{"created": note.Created, "updated": note.Updated, "entityType": entityType}),
		Item: model.Item{
			ID:          note.ID,
			Name:        title,
			Type:        string(model.TypeNote),
			ProjectID:   p.ID,
			ProjectName: p.Name,
			EntityType:  entityType,
			EntityName:  entityName,
			Author:      note.Author,
			NoteContent: note.Content,
			Preview:     truncate(note.Content, PreviewLength),
		},
	}
}

func assetGroupDocument(p model.Project, key string, group model.AssetGroup) model.Document {
	members := make([]string, 0, len(group.Assets))
	for _, ref := range group.Assets {
		if ref.URI != "" {
			members = append(members, ref.URI)
		}
	}
	content := joinNonEmpty(group.Name, group.Details, strings.Join(members, " "))

	return model.Document{
		ID:        model.NewDocumentID(model.TypeAssetGroup, p.ID, key),
		Type:      model.TypeAssetGroup,
		Title:     group.Name,
		Content:   content,
		Tags:      tagging.GenerateTags(content, model.TypeAssetGroup, ""),
		ProjectID: p.ID,
		Metadata:  metadataJSON(map[string]any{"memberCount": len(members)}),
		Item: model.Item{
			ID:          group.ID,
			Name:        group.Name,
			Type:        string(model.TypeAssetGroup),
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Description: group.Details,
			Members:     model.NonEmpty(members),
		},
	}
}

// assetDocuments walks an asset tree with an explicit stack. Plain assets are
// emitted only when they carry notes; external assets are emitted whenever
// they have a URI. Notes on either become note documents. A node whose
// document id was already produced is not visited again.
func assetDocuments(p model.Project, root *model.Asset, docType model.DocumentType) []model.Document {
	if root == nil {
		return nil
	}

	var docs []model.Document
	visited := make(map[string]struct{})
	stack := []*model.Asset{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}

		id := model.NewDocumentID(docType, p.ID, node.URI)
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		// push children in reverse so they pop in declaration order
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}

		if node.URI == "" {
			continue
		}
		emit := len(node.Notes) > 0 || docType == model.TypeExternalAsset
		if !emit {
			continue
		}

		name := assetName(node)
		docs = append(docs, assetDocument(p, node, docType, id, name))
		for i, note := range node.Notes {
			docs = append(docs, noteDocument(p, string(docType), name, node.URI, i, note))
		}
	}
	return docs
}

func assetName(a *model.Asset) string {
	if a.Name != "" {
		return a.Name
	}
	trimmed := strings.TrimRight(strings.ReplaceAll(a.URI, "\\", "/"), "/")
	if base := path.Base(trimmed); base != "." && base != "/" && base != "" {
		return base
	}
	return a.URI
}

func assetDocument(p model.Project, a *model.Asset, docType model.DocumentType, id, name string) model.Document {
	noteBodies := make([]string, 0, len(a.Notes))
	for _, note := range a.Notes {
		noteBodies = append(noteBodies, note.Content)
	}
	content := joinNonEmpty(name, a.URI, strings.Join(noteBodies, " "))
	ext := strings.TrimPrefix(path.Ext(name), ".")

	return model.Document{
		ID:        id,
		Type:      docType,
		Title:     name,
		Content:   content,
		Tags:      tagging.GenerateTags(content, docType, ext),
		ProjectID: p.ID,
		Metadata:  metadataJSON(map[string]any{"assetType": a.Type, "notesCount": len(a.Notes), "childCount": len(a.Children)}),
		Item: model.Item{
			ID:          a.URI,
			Name:        name,
			Type:        string(docType),
			Path:        a.URI,
			URI:         a.URI,
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Extension:   ext,
		},
	}
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// metadataJSON encodes auxiliary facts. Map keys are sorted by encoding/json,
// so the output is stable.
func metadataJSON(facts map[string]any) string {
	data, err := json.Marshal(facts)
	if err != nil {
		return "{}"
	}
	return string(data)
}
