package swhttp

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed error.html
var errorHtml string

//go:embed directory.html
var directoryHtml string

var errorTemplate = template.Must(template.New("error").Parse(errorHtml))
var directoryTemplate = template.Must(template.New("directory").Parse(directoryHtml))

type ErrorPage struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type DirectoryEntry struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	Ext      string `json:"ext"`
	Size     int64  `json:"size"`
	Relative string `json:"relative"`
	IsDir    bool   `json:"isDir"`
}

type DirectoryPage struct {
	Directory string           `json:"directory"`
	Files     []DirectoryEntry `json:"files"`
}

func RenderError(w io.Writer, page ErrorPage) error {
	return errorTemplate.Execute(w, page)
}

func RenderDirectory(w io.Writer, page DirectoryPage) error {
	return directoryTemplate.Execute(w, page)
}
