package app

import (
	"log/slog"

	"github.com/ayusman/signscribe/internal/plugin"
	"github.com/ayusman/signscribe/internal/session"
	"github.com/ayusman/signscribe/internal/store"
)

// handleConfirm records a confirmed sign and runs the actions bound to it.
// Plugins run on their own goroutine so the capture loop never waits on them.
func (a *App) handleConfirm(e session.Event) {
	slog.Info("sign confirmed", "sign", e.Sign, "session", e.SessionID)

	if a.config.Store == nil {
		return
	}

	err := a.config.Store.Events().Append(&store.SignEvent{
		SessionID:   e.SessionID,
		Sign:        e.Sign.String(),
		ConfirmedAt: e.At,
	})
	if err != nil {
		slog.Error("recording sign event", "sign", e.Sign, "error", err)
	}

	actions, err := a.config.Store.Actions().ListBySign(e.Sign.String())
	if err != nil {
		slog.Error("loading sign actions", "sign", e.Sign, "error", err)
		return
	}
	if len(actions) == 0 {
		return
	}

	text := a.session.Transcript().Text
	go a.runActions(e, text, actions)
}

func (a *App) runActions(e session.Event, text string, actions []*store.Action) {
	for _, action := range actions {
		p, err := a.pluginMgr.Get(action.PluginName)
		if err != nil {
			slog.Warn("sign action skipped", "sign", e.Sign, "plugin", action.PluginName, "error", err)
			continue
		}

		req := &plugin.Request{
			Action: action.ActionName,
			Sign:   e.Sign.String(),
			Text:   text,
			Config: action.Config,
		}

		resp, err := a.pluginExec.Execute(a.ctx, p, req)
		switch {
		case err != nil:
			slog.Error("sign action failed", "sign", e.Sign, "plugin", p.Manifest.Name, "action", action.ActionName, "error", err)
		case !resp.Success:
			slog.Warn("sign action rejected", "sign", e.Sign, "plugin", p.Manifest.Name, "action", action.ActionName, "error", resp.Error)
		default:
			slog.Debug("sign action done", "sign", e.Sign, "plugin", p.Manifest.Name, "action", action.ActionName)
		}
	}
}
