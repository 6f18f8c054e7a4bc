// Package mcstatus decodes Minecraft server status documents returned by the
// public status API (api.mcsrvstat.us, protocol version 3).
package mcstatus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultAPI is the base URL of the status API. The server address is
// appended to it to form the request URL.
const DefaultAPI = "https://api.mcsrvstat.us/3/"

// ErrMissingOnline is returned when a document lacks the "online" field,
// which every valid response carries.
var ErrMissingOnline = errors.New("status document has no online field")

// Players holds the player counts reported by the server.
type Players struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// Status is a snapshot of the game server's reachability and population.
//
// Status values are replaced wholesale on every successful poll and are never
// mutated after decoding.
type Status struct {
	Online   bool     `json:"online"`
	Players  Players  `json:"players"`
	Hostname string   `json:"hostname,omitempty"`
	Version  string   `json:"version,omitempty"`
	MOTD     []string `json:"motd,omitempty"`
}

// wireStatus mirrors the subset of the API document that we read.
type wireStatus struct {
	Online   *bool   `json:"online"`
	Hostname string  `json:"hostname"`
	Version  string  `json:"version"`
	Players  Players `json:"players"`
	MOTD     struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
}

// Decode parses a status document.
//
// Offline servers omit the players object, which decodes to zero counts.
func Decode(body []byte) (Status, error) {
	var w wireStatus
	if err := json.Unmarshal(body, &w); err != nil {
		return Status{}, fmt.Errorf("decode status: %w", err)
	}
	if w.Online == nil {
		return Status{}, ErrMissingOnline
	}

	st := Status{
		Online:   *w.Online,
		Players:  w.Players,
		Hostname: w.Hostname,
		Version:  w.Version,
	}
	for _, line := range w.MOTD.Clean {
		if line = strings.TrimSpace(line); line != "" {
			st.MOTD = append(st.MOTD, line)
		}
	}
	return st, nil
}

// URL joins the API base and the server address.
func URL(api, address string) string {
	if !strings.HasSuffix(api, "/") {
		api += "/"
	}
	return api + address
}
