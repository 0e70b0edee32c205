package engine

import (
	"rules-signal-engine/internal/interfaces"
	"rules-signal-engine/internal/store"
)

// New builds an engine over an immutable config snapshot. Construction
// is the only place a configuration mistake is allowed to be fatal.
func New(cfg *store.Config, cls interfaces.Classifier) (interfaces.Engine, error) {
	return newEngine(cfg, cls)
}
