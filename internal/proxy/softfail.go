package proxy

import "github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"

// SoftFailRoutes lists every endpoint that answers with a safe default instead
// of surfacing an upstream failure. Keyed by Route.Key.
var SoftFailRoutes = map[string]any{
	"GET /api/notifications/unread-count":          dto.UnreadCount{Count: 0},
	"GET /api/onboarding/{tenantId}/progress":      dto.OnboardingProgress{CurrentStep: 1, CompletedSteps: []int{}, IsComplete: false},
	"POST /api/onboarding/{tenantId}/complete-step": dto.StepResult{Success: true},
	"GET /api/products/{id}/is-favorite":           dto.FavoriteStatus{IsFavorite: false},
}

// softFailOnMissingAuth lists soft-fail routes that also cover a missing token.
var softFailOnMissingAuth = map[string]bool{
	"GET /api/products/{id}/is-favorite": true,
}

// WithSoftFail attaches the registry entries to the routes they name.
func WithSoftFail(routes []Route) []Route {
	out := make([]Route, len(routes))
	for i, rt := range routes {
		if v, ok := SoftFailRoutes[rt.Key()]; ok {
			rt.SoftFail = v
			rt.SoftFailOnMissingAuth = softFailOnMissingAuth[rt.Key()]
		}
		out[i] = rt
	}
	return out
}
