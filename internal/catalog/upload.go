package catalog

import (
	"fmt"
	"strings"
)

// Strategy is one of the mutually exclusive ways to supply a cover.
type Strategy int

const (
	StrategyFile Strategy = iota
	StrategyURL
	StrategyAPI
)

// Strategies lists the strategies in tab order.
var Strategies = []Strategy{StrategyFile, StrategyURL, StrategyAPI}

func (s Strategy) String() string {
	switch s {
	case StrategyFile:
		return "file"
	case StrategyURL:
		return "url"
	case StrategyAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Label is the human-readable tab title.
func (s Strategy) Label() string {
	switch s {
	case StrategyFile:
		return "Upload File"
	case StrategyURL:
		return "From URL"
	case StrategyAPI:
		return "iTunes Lookup"
	default:
		return "?"
	}
}

// ParseStrategy maps the wire "source" value to a strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "":
		return StrategyFile, nil
	case "url":
		return StrategyURL, nil
	case "api":
		return StrategyAPI, nil
	default:
		return 0, fmt.Errorf("invalid source %q", s)
	}
}

// Next cycles to the following strategy, wrapping around.
func (s Strategy) Next() Strategy {
	return Strategies[(int(s)+1)%len(Strategies)]
}

// Prev cycles to the preceding strategy, wrapping around.
func (s Strategy) Prev() Strategy {
	return Strategies[(int(s)+len(Strategies)-1)%len(Strategies)]
}

type CoverFile struct {
	Name string
	Data []byte
}

// UploadRequest is the payload for a cover update. Exactly one of File or
// URL is meaningful depending on Strategy; the api strategy carries nothing
// because the lookup is keyed by the album's artist and title.
type UploadRequest struct {
	Strategy Strategy
	File     *CoverFile
	URL      string
}

func FileUpload(name string, data []byte) UploadRequest {
	return UploadRequest{Strategy: StrategyFile, File: &CoverFile{Name: name, Data: data}}
}

func URLUpload(url string) UploadRequest {
	return UploadRequest{Strategy: StrategyURL, URL: url}
}

func APIUpload() UploadRequest {
	return UploadRequest{Strategy: StrategyAPI}
}

// Validate checks the tab-specific input. It never touches the network.
func (r UploadRequest) Validate() error {
	switch r.Strategy {
	case StrategyFile:
		if r.File == nil || r.File.Name == "" {
			return &ValidationError{Field: "file", Message: "Please select a file"}
		}
		if len(r.File.Data) == 0 {
			return &ValidationError{Field: "file", Message: "Selected file is empty"}
		}
	case StrategyURL:
		if strings.TrimSpace(r.URL) == "" {
			return &ValidationError{Field: "url", Message: "Please enter a URL"}
		}
	case StrategyAPI:
	default:
		return &ValidationError{Field: "source", Message: "Invalid source"}
	}
	return nil
}
