package pinboard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JakeFAU/linkrot/internal/linkrot"
)

// post is the JSON shape of a bookmark in posts/all and posts/get.
type post struct {
	Href        string `json:"href"`
	Description string `json:"description"`
	Extended    string `json:"extended"`
	Meta        string `json:"meta"`
	Hash        string `json:"hash"`
	Time        string `json:"time"`
	Shared      string `json:"shared"`
	ToRead      string `json:"toread"`
	Tags        string `json:"tags"`
}

type getResponse struct {
	Date  string `json:"date"`
	User  string `json:"user"`
	Posts []post `json:"posts"`
}

type resultResponse struct {
	ResultCode string `json:"result_code"`
}

type updateResponse struct {
	UpdateTime string `json:"update_time"`
}

func toBookmarks(op string, posts []post) ([]linkrot.Bookmark, error) {
	out := make([]linkrot.Bookmark, 0, len(posts))
	for i, p := range posts {
		b, err := p.bookmark()
		if err != nil {
			return nil, &linkrot.StoreError{
				Op:         op,
				StatusCode: http.StatusOK,
				Err:        fmt.Errorf("%w: post %d: %v", linkrot.ErrMalformedResponse, i, err),
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func (p post) bookmark() (linkrot.Bookmark, error) {
	if p.Href == "" {
		return linkrot.Bookmark{}, errors.New("missing href")
	}
	var created time.Time
	if p.Time != "" {
		t, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return linkrot.Bookmark{}, fmt.Errorf("parse time %q: %w", p.Time, err)
		}
		created = t.UTC()
	}
	return linkrot.Bookmark{
		URL:         p.Href,
		Description: p.Description,
		Extended:    p.Extended,
		Time:        created,
		Shared:      p.Shared == "yes",
		ToRead:      p.ToRead == "yes",
		Tags:        strings.Fields(p.Tags),
	}, nil
}

func addParams(b linkrot.Bookmark) url.Values {
	params := url.Values{
		"url":         {b.URL},
		"description": {b.Description},
		"extended":    {b.Extended},
		"shared":      {yesNo(b.Shared)},
		"toread":      {yesNo(b.ToRead)},
		"tags":        {strings.Join(b.Tags, " ")},
		"replace":     {"yes"},
	}
	if !b.Time.IsZero() {
		params.Set("dt", b.Time.UTC().Format(timeLayout))
	}
	return params
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
