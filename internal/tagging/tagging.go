// Package tagging decides which files have indexable text and derives
// categorical tags from a document's type, extension and content.
package tagging

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/StatTag/StatWrap-sub000/model"
)

// indexableExtensions is the allow-list of text-like file extensions (without dot, lowercase).
var indexableExtensions = map[string]struct{}{}

func init() {
	for _, ext := range []string{
		"txt", "md", "markdown", "rmd", "qmd", "r", "py", "js", "ts", "jsx", "tsx", "java", "c", "cpp",
		"h", "hpp", "cs", "go", "rs", "rb", "php", "sh", "bash", "zsh", "sql", "sas", "do", "ado", "sps",
		"m", "jl", "scala", "kt", "swift", "html", "htm", "css", "scss", "xml", "json", "yaml", "yml",
		"toml", "ini", "cfg", "conf", "csv", "tsv", "tex", "bib", "rst", "log", "ipynb", "dockerfile",
		"makefile", "gitignore", "env", "properties",
	} {
		indexableExtensions[ext] = struct{}{}
	}
}

// specialFileNames are always indexable regardless of extension.
var specialFileNames = []string{"readme", "license", "makefile", "dockerfile"}

// Categories maps a tag category to the keywords that trigger it.
var Categories = map[string][]string{
	"statistics": {
		"regression", "anova", "variance", "correlation", "hypothesis", "p-value", "confidence interval",
		"standard deviation", "t-test", "chi-square", "bayesian", "statistical",
	},
	"machine-learning": {
		"neural network", "deep learning", "classifier", "random forest", "gradient boosting", "training",
		"cross-validation", "tensorflow", "pytorch", "scikit-learn", "clustering",
	},
	"data": {
		"dataset", "dataframe", "csv", "database", "sql", "pandas", "numpy", "data cleaning", "etl",
		"missing values",
	},
	"visualization": {
		"plot", "chart", "ggplot", "matplotlib", "histogram", "scatter", "heatmap", "dashboard", "figure",
	},
	"research": {
		"hypothesis", "methodology", "literature", "study", "experiment", "survey", "cohort", "irb",
		"manuscript", "protocol",
	},
}

// NormalizeExtension lowercases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}

// ClassifyFile reports whether a file's text content should be indexed.
func ClassifyFile(filename, extension string) bool {
	base := strings.ToLower(filepath.Base(filename))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, special := range specialFileNames {
		if base == special || stem == special {
			return true
		}
	}

	ext := NormalizeExtension(extension)
	if ext == "" {
		ext = NormalizeExtension(filepath.Ext(base))
	}
	if ext == "" {
		return false
	}
	_, ok := indexableExtensions[ext]
	return ok
}

// GenerateTags returns the sorted tag set for a document. It always contains
// the type, an ext-<extension> tag when an extension is given, and one
// <category>-<keyword> tag per keyword found in content.
func GenerateTags(content string, docType model.DocumentType, extension string) []string {
	set := map[string]struct{}{string(docType): {}}

	if ext := NormalizeExtension(extension); ext != "" {
		set["ext-"+ext] = struct{}{}
	}

	if content != "" {
		lower := strings.ToLower(content)
		for category, keywords := range Categories {
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					set[category+"-"+strings.ReplaceAll(kw, " ", "-")] = struct{}{}
				}
			}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// MergeTags returns the sorted union of the given tag lists.
func MergeTags(lists ...[]string) []string {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, tag := range list {
			if tag != "" {
				set[tag] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
