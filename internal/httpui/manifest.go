package httpui

import (
	"encoding/json"
	"strings"
)

// MiniApp describes how the dashboard presents itself to a Farcaster client.
type MiniApp struct {
	Name                  string
	PublicURL             string
	IconURL               string
	ImageURL              string
	ButtonTitle           string
	SplashImageURL        string
	SplashBackgroundColor string

	// Signed domain association, produced out of band.
	AccountAssociation AccountAssociation
}

type AccountAssociation struct {
	Header    string `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type Manifest struct {
	AccountAssociation *AccountAssociation `json:"accountAssociation,omitempty"`
	MiniApp            ManifestApp         `json:"miniapp"`
}

type ManifestApp struct {
	Version               string `json:"version"`
	Name                  string `json:"name"`
	HomeURL               string `json:"homeUrl"`
	IconURL               string `json:"iconUrl,omitempty"`
	ImageURL              string `json:"imageUrl,omitempty"`
	ButtonTitle           string `json:"buttonTitle,omitempty"`
	SplashImageURL        string `json:"splashImageUrl,omitempty"`
	SplashBackgroundColor string `json:"splashBackgroundColor,omitempty"`
}

type embedCard struct {
	Version  string      `json:"version"`
	ImageURL string      `json:"imageUrl"`
	Button   embedButton `json:"button"`
}

type embedButton struct {
	Title  string      `json:"title"`
	Action embedAction `json:"action"`
}

type embedAction struct {
	Type                  string `json:"type"`
	Name                  string `json:"name"`
	URL                   string `json:"url"`
	SplashImageURL        string `json:"splashImageUrl,omitempty"`
	SplashBackgroundColor string `json:"splashBackgroundColor,omitempty"`
}

const miniAppVersion = "1"

func (m MiniApp) homeURL() string {
	u := strings.TrimRight(m.PublicURL, "/")
	if u == "" {
		return "/"
	}
	return u + "/"
}

// Manifest is served at /.well-known/farcaster.json.
func (m MiniApp) Manifest() Manifest {
	out := Manifest{
		MiniApp: ManifestApp{
			Version:               miniAppVersion,
			Name:                  m.Name,
			HomeURL:               m.homeURL(),
			IconURL:               m.IconURL,
			ImageURL:              m.ImageURL,
			ButtonTitle:           m.ButtonTitle,
			SplashImageURL:        m.SplashImageURL,
			SplashBackgroundColor: m.SplashBackgroundColor,
		},
	}
	if m.AccountAssociation != (AccountAssociation{}) {
		aa := m.AccountAssociation
		out.AccountAssociation = &aa
	}
	return out
}

// EmbedJSON is the content of the fc:miniapp meta tag.
func (m MiniApp) EmbedJSON() string {
	b, err := json.Marshal(embedCard{
		Version:  miniAppVersion,
		ImageURL: m.ImageURL,
		Button: embedButton{
			Title: m.ButtonTitle,
			Action: embedAction{
				Type:                  "launch_miniapp",
				Name:                  m.Name,
				URL:                   m.homeURL(),
				SplashImageURL:        m.SplashImageURL,
				SplashBackgroundColor: m.SplashBackgroundColor,
			},
		},
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}
