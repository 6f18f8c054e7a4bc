package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// mockState tracks the simulated server population.
type mockState struct {
	online       bool
	players      int
	nextChangeAt time.Time
}

// StartMockStatusAPI runs a mock status API that answers like
// api.mcsrvstat.us for any server address. The player count drifts on every
// request and the server goes offline for a while every few minutes.
// Call this in a goroutine before creating the site.
func StartMockStatusAPI(addr string) {
	var mu sync.Mutex
	state := &mockState{
		online:       true,
		players:      120,
		nextChangeAt: time.Now().Add(time.Duration(120+rand.Intn(180)) * time.Second),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/3/", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		if time.Now().After(state.nextChangeAt) {
			state.online = !state.online
			if state.online {
				state.nextChangeAt = time.Now().Add(time.Duration(120+rand.Intn(180)) * time.Second)
			} else {
				state.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(40)) * time.Second)
			}
			slog.Info("status change", "online", state.online)
		}
		state.players += rand.Intn(11) - 5
		if state.players < 0 {
			state.players = 0
		}
		online, players := state.online, state.players
		mu.Unlock()

		doc := map[string]any{"online": online, "hostname": r.URL.Path[len("/3/"):]}
		if online {
			doc["version"] = "1.8 - 1.21.x"
			doc["players"] = map[string]int{"online": players, "max": 500}
			doc["motd"] = map[string][]string{"clean": {"DragonSMP", "Hayırlı Ramazanlar"}}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
