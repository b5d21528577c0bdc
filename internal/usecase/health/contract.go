package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// Component is one named dependency check. A failing critical component makes the
// service unhealthy; any other failure only degrades it.
type Component struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// Database checks the shared store. The catalog and rate limiter both live there.
func Database(p DBPinger) Component {
	return Component{Name: "database", Critical: true, Check: p.Ping}
}

// Embedding checks the embedding provider. Search cannot embed queries without it,
// but health still reports degraded rather than down so the pod is not restarted.
func Embedding(c EmbeddingChecker) Component {
	return Component{Name: "embedding", Check: c.HealthCheck}
}
