package templates

import (
	"fmt"
	"net/url"

	"github.com/aouyang1/autoslides/slideshow"
)

const embedBaseURL = "https://docs.google.com/presentation/d"

// Page is the data rendered into the public slideshow page.
type Page struct {
	Title  string
	URL    string
	Params slideshow.Params
}

// pageData is what the page script reads from the JSON block.
type pageData struct {
	URL string `json:"url"`
	slideshow.Params
}

func (p Page) data() pageData {
	return pageData{URL: p.URL, Params: p.Params}
}

// EmbedURL is the host viewer address of a presentation.
func EmbedURL(documentID string) string {
	return fmt.Sprintf("%s/%s/embed", embedBaseURL, url.PathEscape(documentID))
}
