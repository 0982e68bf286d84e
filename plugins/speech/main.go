// Package main provides a speech plugin that reads signs or the transcript
// aloud with the platform text-to-speech command.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Sign   string          `json:"sign"`
	Text   string          `json:"text"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SayConfig tunes the voice.
type SayConfig struct {
	Voice string `json:"voice"`
	// Rate is words per minute; 0 keeps the engine default.
	Rate int `json:"rate"`
	// Text replaces what would otherwise be spoken.
	Text string `json:"text"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "say" {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	var cfg SayConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(Response{Error: fmt.Sprintf("failed to parse config: %v", err)})
			return
		}
	}

	text := utterance(req, cfg)
	if text == "" {
		writeResponse(Response{Error: "nothing to say"})
		return
	}

	name, args := speechCommand(runtime.GOOS, text, cfg)
	if output, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("%s: %v: %s", name, err, output)})
		return
	}

	writeResponse(Response{Success: true})
}

// utterance picks the configured text, then the transcript, then the sign.
func utterance(req Request, cfg SayConfig) string {
	for _, s := range []string{cfg.Text, req.Text, req.Sign} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// speechCommand builds the text-to-speech invocation for goos.
func speechCommand(goos, text string, cfg SayConfig) (string, []string) {
	if goos == "darwin" {
		var args []string
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if cfg.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(cfg.Rate))
		}
		return "say", append(args, text)
	}

	var args []string
	if cfg.Voice != "" {
		args = append(args, "-v", cfg.Voice)
	}
	if cfg.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(cfg.Rate))
	}
	return "espeak", append(args, text)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
