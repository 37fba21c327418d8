package cascade

import (
	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/cache"
	"github.com/saulomartins80/finnextho-bfa-go/internal/port"
)

// IntentCache memoiza o DetectedAction por (mensagem, nome, plano).
// As entradas não expiram; o cache vive enquanto o processo vive.
type IntentCache struct {
	items port.Cache[chatdomain.DetectedAction]
}

// NewIntentCache cria o cache. store nil usa um cache em memória sem TTL.
func NewIntentCache(store port.Cache[chatdomain.DetectedAction]) *IntentCache {
	if store == nil {
		store = cache.New[chatdomain.DetectedAction](0)
	}
	return &IntentCache{items: store}
}

// Get devolve uma cópia; quem recebe pode alterar sem afetar o cache.
func (c *IntentCache) Get(key string) (*chatdomain.DetectedAction, bool) {
	a, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	return clone(&a), true
}

// Set grava uma cópia de a.
func (c *IntentCache) Set(key string, a *chatdomain.DetectedAction) {
	if a == nil {
		return
	}
	c.items.Set(key, *clone(a))
}

// Forget remove a entrada da chave.
func (c *IntentCache) Forget(key string) {
	c.items.Delete(key)
}

func clone(a *chatdomain.DetectedAction) *chatdomain.DetectedAction {
	cp := *a
	if a.FollowUpQuestions != nil {
		cp.FollowUpQuestions = append([]string(nil), a.FollowUpQuestions...)
	}
	return &cp
}

// KeyFor monta a chave do Intent Cache. Snapshot ausente conta como nome e
// plano vazios.
func KeyFor(in *Input) string {
	var name, plan string
	if in.Snapshot != nil {
		name = in.Snapshot.Name
		plan = in.Snapshot.SubscriptionPlan
	}
	return in.Message + "::" + name + "::" + plan
}
