package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// BindNATS feeds the broadcaster from the identity service's session
// subjects (<base>.login and <base>.logout). The returned function drains
// both subscriptions.
func (b *Broadcaster) BindNATS(conn *nats.Conn, subjectBase string) (func(), error) {
	if conn == nil {
		return nil, fmt.Errorf("nats connection must not be nil")
	}

	base := strings.TrimSuffix(strings.TrimSpace(subjectBase), ".")
	if base == "" {
		base = "maestro.session"
	}

	loginSub, err := conn.Subscribe(base+".login", func(msg *nats.Msg) {
		var actor Actor
		if err := json.Unmarshal(msg.Data, &actor); err != nil {
			b.logger.Warn().Err(err).Msg("discarding malformed login event")
			return
		}
		b.Login(actor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to session logins: %w", err)
	}

	logoutSub, err := conn.Subscribe(base+".logout", func(msg *nats.Msg) {
		b.Logout()
	})
	if err != nil {
		_ = loginSub.Unsubscribe()
		return nil, fmt.Errorf("failed to subscribe to session logouts: %w", err)
	}

	return func() {
		_ = loginSub.Drain()
		_ = logoutSub.Drain()
	}, nil
}
