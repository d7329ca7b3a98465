package telegram

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/core/telegram/commands"
)

// Registry holds bot commands, their text aliases and the text fallback.
type Registry struct {
	commands     map[string]commands.Command
	aliases      map[string]string
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		aliases:  make(map[string]string),
	}
}

// RegisterCommand adds cmd under name, which must start with "/". Invalid and
// duplicate registrations are logged and dropped; the first one wins.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil {
		return
	}
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		skipCommand(name, "invalid")
		return
	case !strings.HasPrefix(name, "/"):
		skipCommand(name, "no_slash_prefix")
		return
	}
	if _, dup := r.commands[name]; dup {
		skipCommand(name, "duplicate")
		return
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		if _, taken := r.aliases[alias]; !taken {
			r.aliases[alias] = name
		}
	}
}

func skipCommand(name, reason string) {
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
		slog.String("name", name),
		slog.String("reason", reason),
	)
}

// ListCommands returns the commands sorted by name. With visibleOnly set,
// hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves message text to a command. The text may be a command
// name with or without the slash, or one of the command's aliases such as a
// reply keyboard label.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", commands.Command{}, false
	}
	if name, ok := r.aliases[text]; ok {
		return name, r.commands[name], true
	}
	name := text
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// Commands returns all registered commands keyed by name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets the handler for text no flow or command claims.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the text fallback handler, if any.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
