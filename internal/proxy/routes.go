package proxy

import (
	"net/http"
	"net/url"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/transform"
)

const (
	msgNotAuthenticated = "Non authentifié"
	msgTokenMissing     = "Token manquant"
	msgUnauthorized     = "Unauthorized"
	msgInternal         = "Internal server error"

	msgAuthDown    = "Erreur de connexion au service d'authentification"
	msgAuthTimeout = "Timeout: Le service d'authentification ne répond pas"

	msgOrderDown    = "Erreur de connexion au service de commandes"
	msgOrderTimeout = "Timeout: Le service de commandes ne répond pas"

	msgProductDown    = "Erreur de connexion au service de produits"
	msgProductTimeout = "Timeout: Le service de produits ne répond pas"

	msgPaymentDown    = "Erreur de connexion au service de paiement"
	msgPaymentTimeout = "Timeout lors de la connexion au service de paiement"

	msgNotificationDown    = "Erreur de connexion au service de notifications"
	msgNotificationTimeout = "Timeout lors de la connexion au service de notifications"

	msgTenantDown    = "Erreur de connexion au service de tenants"
	msgTenantTimeout = "Timeout lors de la connexion au service de tenants"
)

// Routes returns every proxied storefront endpoint with the soft-fail registry applied.
func Routes() []Route {
	var all []Route
	all = append(all, authRoutes()...)
	all = append(all, orderRoutes()...)
	all = append(all, productRoutes()...)
	all = append(all, paymentRoutes()...)
	all = append(all, notificationRoutes()...)
	all = append(all, tenantRoutes()...)
	return WithSoftFail(all)
}

// Lookup finds a route by Name.
func Lookup(name string) (Route, bool) {
	for _, rt := range Routes() {
		if rt.Name == name {
			return rt, true
		}
	}
	return Route{}, false
}

func authRoutes() []Route {
	// Profile and team endpoints relay upstream errors as-is and answer 200.
	profile := func(name, method, pattern string, target TargetFunc, body BodyMode, failure string) Route {
		return Route{
			Name: name, Method: method, Pattern: pattern,
			Service: clients.ServiceAuth, Target: target,
			Auth: AuthHeader, MissingAuthMessage: msgTokenMissing,
			Body:              body,
			ErrorKey:          "error",
			PassThroughErrors: true,
			FailureMessage:    failure,
			TimeoutMessage:    msgAuthTimeout,
			SuccessStatus:     http.StatusOK,
		}
	}

	password := profile("users.password", http.MethodPatch, "/api/users/me/password", Fixed("/api/v1/users/me/password"), BodyForward, "Erreur lors de la mise à jour du mot de passe")
	password.SuccessStatus = http.StatusNoContent

	invite := profile("team.invite", http.MethodPost, "/api/team/invite", Fixed("/api/v1/team/invite"), BodyForward, "Erreur lors de l'invitation")
	invite.SuccessStatus = http.StatusCreated

	return []Route{
		{
			Name: "auth.login", Method: http.MethodPost, Pattern: "/api/auth/login",
			Service: clients.ServiceAuth, Target: Fixed("/login"),
			Body:           BodyForward,
			DefaultError:   "Erreur lors de la connexion",
			FailureMessage: msgAuthDown,
			TimeoutMessage: msgAuthTimeout,
		},
		{
			Name: "auth.register", Method: http.MethodPost, Pattern: "/api/auth/register",
			Service: clients.ServiceAuth, Target: Fixed("/register"),
			Body:           BodyForward,
			DefaultError:   "Erreur lors de l'inscription",
			FailureMessage: msgAuthDown,
			TimeoutMessage: msgAuthTimeout,
		},
		{
			Name: "auth.validate", Method: http.MethodGet, Pattern: "/api/auth/validate",
			Service: clients.ServiceAuth, Target: Fixed("/validate"),
			Auth: AuthBearer, MissingAuthMessage: msgTokenMissing,
			ErrorExtra:     map[string]any{"valid": false},
			DefaultError:   "Token invalide",
			FailureMessage: msgAuthDown,
			TimeoutMessage: msgAuthTimeout,
		},
		profile("users.me", http.MethodGet, "/api/users/me", Fixed("/api/v1/users/me"), BodyNone, "Erreur lors de la récupération du profil"),
		profile("users.me.update", http.MethodPatch, "/api/users/me", Fixed("/api/v1/users/me"), BodyForward, "Erreur lors de la mise à jour du profil"),
		password,
		profile("team.users", http.MethodGet, "/api/team/users", Fixed("/api/v1/team/users"), BodyNone, "Erreur lors de la récupération des utilisateurs"),
		profile("team.users.status", http.MethodPatch, "/api/team/users/{userId}/status", Pattern("/api/v1/team/users/{userId}/status"), BodyForward, "Erreur lors de la mise à jour du statut"),
		invite,
	}
}

// OrderRoute builds an order-service route. Checkout reuses it for order creation.
func OrderRoute(name, method, pattern string, target TargetFunc, body BodyMode, defaultErr string) Route {
	return Route{
		Name: name, Method: method, Pattern: pattern,
		Service: clients.ServiceOrder, Target: target,
		Auth: AuthBearer, MissingAuthMessage: msgNotAuthenticated,
		Tenant:         TenantScoped,
		Body:           body,
		Transform:      transform.Orders,
		DefaultError:   defaultErr,
		FailureMessage: msgOrderDown,
		TimeoutMessage: msgOrderTimeout,
	}
}

// CreateOrderRoute is the upstream order creation used by POST /api/orders and checkout.
func CreateOrderRoute() Route {
	return OrderRoute("orders.create", http.MethodPost, "/api/orders", Fixed("/orders"), BodyForward, "Erreur lors de la création de la commande")
}

func orderRoutes() []Route {
	del := OrderRoute("orders.delete", http.MethodDelete, "/api/orders/{id}", Pattern("/orders/{id}"), BodyNone, "Erreur lors de la suppression de la commande")
	del.Transform = nil
	del.SuccessStatus = http.StatusOK
	del.SuccessBody = dto.Message{Message: "Commande supprimée"}

	return []Route{
		OrderRoute("orders.list", http.MethodGet, "/api/orders", Fixed("/orders"), BodyNone, "Erreur lors de la récupération des commandes"),
		CreateOrderRoute(),
		OrderRoute("orders.get", http.MethodGet, "/api/orders/{id}", Pattern("/orders/{id}"), BodyNone, "Erreur lors de la récupération de la commande"),
		OrderRoute("orders.update", http.MethodPut, "/api/orders/{id}", Pattern("/orders/{id}"), BodyForward, "Erreur lors de la mise à jour de la commande"),
		del,
	}
}

func productTarget(p Params) Target {
	if q := p.Query("search"); q != "" {
		return Target{Path: "/products/search", Query: url.Values{"q": {q}}}
	}
	if c := p.Query("category"); c != "" {
		return Target{Path: "/products/category/" + c}
	}
	return Target{Path: "/products"}
}

func marketplaceProductTarget(p Params) Target {
	if q := p.Query("search"); q != "" {
		return Target{Path: "/products/all/search", Query: url.Values{"q": {q}}}
	}
	t := Target{Path: "/products/all"}
	if c := p.Query("category"); c != "" {
		t.Query = url.Values{"category": {c}}
	}
	return t
}

func favoriteTarget(p Params) Target {
	id, _ := PathSegment(p.Body["productId"])
	return Target{Path: "/products/" + id + "/favorite"}
}

func validFavorite(body map[string]any) bool {
	_, ok := PathSegment(body["productId"])
	return ok
}

func productRoutes() []Route {
	// Catalog reads answer upstream errors under the "error" key.
	catalog := func(name, pattern string, target TargetFunc, defaultErr string) Route {
		return Route{
			Name: name, Method: http.MethodGet, Pattern: pattern,
			Service: clients.ServiceProduct, Target: target,
			ErrorKey:       "error",
			DefaultError:   defaultErr,
			FailureMessage: msgInternal,
			TimeoutMessage: msgProductTimeout,
			SuccessStatus:  http.StatusOK,
		}
	}

	list := catalog("products.list", "/api/products", productTarget, "Failed to fetch products")
	list.Tenant = TenantScoped
	list.MarketplaceTarget = marketplaceProductTarget
	list.Transform = transform.Products

	get := catalog("products.get", "/api/products/{id}", Pattern("/products/{id}"), "Product not found")
	get.Tenant = TenantScoped
	get.Transform = transform.Product

	categories := catalog("categories.list", "/api/categories", Fixed("/categories"), "Failed to fetch categories")
	categories.Tenant = TenantScoped
	categories.MarketplaceTarget = Fixed("/categories/all")

	favorites := catalog("favorites.list", "/api/favorites", Fixed("/favorites"), "Failed to fetch favorites")
	favorites.Tenant = TenantScoped
	favorites.Auth = AuthHeader
	favorites.MissingAuthMessage = msgUnauthorized

	isFavorite := catalog("products.is_favorite", "/api/products/{id}/is-favorite", Pattern("/products/{id}/is-favorite"), "Failed to fetch favorite status")
	isFavorite.Tenant = TenantScoped
	isFavorite.Auth = AuthHeader
	isFavorite.MissingAuthMessage = msgUnauthorized

	return []Route{
		list,
		get,
		catalog("products.reviews", "/api/products/{id}/reviews", Pattern("/products/{id}/reviews"), "Failed to fetch reviews"),
		{
			Name: "products.reviews.create", Method: http.MethodPost, Pattern: "/api/products/{id}/reviews",
			Service: clients.ServiceProduct, Target: Pattern("/products/{id}/review"),
			Auth:           AuthOptional,
			Body:           BodyForward,
			DefaultError:   "Failed to create review",
			FailureMessage: msgInternal,
			TimeoutMessage: msgProductTimeout,
			SuccessStatus:  http.StatusOK,
		},
		isFavorite,
		{
			Name: "products.validate_batch", Method: http.MethodPost, Pattern: "/api/products/validate-batch",
			Service: clients.ServiceProduct, Target: Fixed("/products/validate-batch"),
			Body:           BodyForward,
			DefaultError:   "Erreur lors de la validation des produits",
			FailureMessage: msgProductDown,
			TimeoutMessage: msgProductTimeout,
		},
		{
			Name: "products.decrement_stock", Method: http.MethodPost, Pattern: "/api/products/decrement-stock",
			Service: clients.ServiceProduct, Target: Fixed("/products/decrement-stock"),
			Tenant:         TenantScoped,
			Body:           BodyForward,
			DefaultError:   "Erreur lors de la décrémentation du stock",
			FailureMessage: msgProductDown,
			TimeoutMessage: msgProductTimeout,
		},
		categories,
		favorites,
		{
			Name: "favorites.add", Method: http.MethodPost, Pattern: "/api/favorites",
			Service: clients.ServiceProduct, Target: favoriteTarget,
			Auth: AuthHeader, MissingAuthMessage: msgUnauthorized,
			Tenant:          TenantScoped,
			Body:            BodyForward,
			Required:        []string{"productId"},
			RequiredMessage: "productId is required",
			Valid:           validFavorite,
			// The product id travels in the path; nothing is sent as body.
			Rebuild:        func(map[string]any) any { return nil },
			ErrorKey:       "error",
			DefaultError:   "Failed to add favorite",
			FailureMessage: msgInternal,
			TimeoutMessage: msgProductTimeout,
			SuccessStatus:  http.StatusOK,
		},
		{
			Name: "favorites.remove", Method: http.MethodDelete, Pattern: "/api/favorites/{productId}",
			Service: clients.ServiceProduct, Target: Pattern("/products/{productId}/favorite"),
			Auth: AuthHeader, MissingAuthMessage: msgUnauthorized,
			DefaultError:   "Failed to remove favorite",
			FailureMessage: msgInternal,
			TimeoutMessage: msgProductTimeout,
			SuccessStatus:  http.StatusOK,
		},
	}
}

func rebuildCreateIntent(body map[string]any) any {
	currency := body["currency"]
	if !transform.Truthy(currency) {
		currency = "eur"
	}
	return dto.CreateIntentRequest{
		Amount:   body["amount"],
		Currency: currency,
		OrderID:  body["order_id"],
	}
}

func paymentRoutes() []Route {
	return []Route{
		{
			Name: "payment.create_intent", Method: http.MethodPost, Pattern: "/api/payment/create-intent",
			Service: clients.ServicePayment, Target: Fixed("/api/v1/payments/create-intent"),
			Auth: AuthBearer, MissingAuthMessage: msgNotAuthenticated,
			Tenant:          TenantScoped,
			Body:            BodyForward,
			Required:        []string{"amount", "order_id"},
			RequiredMessage: "Montant et order_id requis",
			Rebuild:         rebuildCreateIntent,
			ErrorFields:     []string{"error", "message", "detail"},
			DefaultError:    "Erreur lors de la création du paiement",
			FailureMessage:  msgPaymentDown,
			TimeoutMessage:  msgPaymentTimeout,
		},
		{
			Name: "payment.get", Method: http.MethodGet, Pattern: "/api/payment/{id}",
			Service: clients.ServicePayment, Target: Pattern("/api/v1/payments/{id}"),
			Auth: AuthBearer, MissingAuthMessage: msgNotAuthenticated,
			Tenant:         TenantScoped,
			ErrorFields:    []string{"error", "message", "detail"},
			DefaultError:   "Erreur lors de la récupération du paiement",
			FailureMessage: msgPaymentDown,
			TimeoutMessage: msgPaymentTimeout,
		},
		{
			Name: "payments.list", Method: http.MethodGet, Pattern: "/api/payments",
			Service: clients.ServicePayment, Target: Fixed("/api/v1/payments"),
			Auth: AuthHeader, MissingAuthMessage: msgTokenMissing,
			ErrorKey:          "error",
			PassThroughErrors: true,
			FailureMessage:    "Erreur lors de la récupération des paiements",
			TimeoutMessage:    msgPaymentTimeout,
			SuccessStatus:     http.StatusOK,
		},
	}
}

func rebuildSMS(body map[string]any) any {
	return dto.SMSRequest{PhoneNumber: body["phone_number"], Message: body["message"]}
}

func notificationRoutes() []Route {
	return []Route{
		{
			Name: "notifications.history", Method: http.MethodGet, Pattern: "/api/notifications/history",
			Service: clients.ServiceNotification, Target: Fixed("/api/v1/notifications/history"),
			Auth: AuthHeader, MissingAuthMessage: msgTokenMissing,
			QueryAllow:        []string{"type", "status"},
			ErrorKey:          "error",
			PassThroughErrors: true,
			FailureMessage:    "Erreur lors de la récupération de l'historique",
			TimeoutMessage:    msgNotificationTimeout,
			SuccessStatus:     http.StatusOK,
		},
		{
			Name: "notifications.unread_count", Method: http.MethodGet, Pattern: "/api/notifications/unread-count",
			Service: clients.ServiceNotification, Target: Fixed("/api/v1/notifications/unread-count"),
			Auth: AuthHeader, MissingAuthMessage: msgTokenMissing,
			ErrorKey:       "error",
			FailureMessage: msgNotificationDown,
			TimeoutMessage: msgNotificationTimeout,
			SuccessStatus:  http.StatusOK,
		},
		{
			Name: "notifications.sms", Method: http.MethodPost, Pattern: "/api/notifications/sms",
			Service: clients.ServiceNotification, Target: Fixed("/notifications/sms"),
			Auth:            AuthOptional,
			Body:            BodyForward,
			Required:        []string{"phone_number", "message"},
			RequiredMessage: "phone_number et message sont requis",
			Rebuild:         rebuildSMS,
			DefaultError:    "Erreur lors de l’envoi de la notification SMS",
			FailureMessage:  msgNotificationDown,
			TimeoutMessage:  msgNotificationTimeout,
		},
	}
}

func tenantRoutes() []Route {
	return []Route{
		{
			Name: "tenants.list", Method: http.MethodGet, Pattern: "/api/tenants",
			Service: clients.ServiceTenant, Target: Fixed("/tenants"),
			Auth: AuthBearer, MissingAuthMessage: msgNotAuthenticated,
			Transform:      transform.Tenants,
			DefaultError:   "Erreur lors de la récupération des tenants",
			FailureMessage: msgTenantDown,
			TimeoutMessage: msgTenantTimeout,
			SuccessStatus:  http.StatusOK,
		},
		{
			Name: "onboarding.progress", Method: http.MethodGet, Pattern: "/api/onboarding/{tenantId}/progress",
			Service: clients.ServiceTenant, Target: Pattern("/api/v1/onboarding/{tenantId}/progress"),
			Auth: AuthHeader, MissingAuthMessage: msgTokenMissing,
			ErrorKey:       "error",
			FailureMessage: msgTenantDown,
			TimeoutMessage: msgTenantTimeout,
			SuccessStatus:  http.StatusOK,
		},
		{
			Name: "onboarding.complete_step", Method: http.MethodPost, Pattern: "/api/onboarding/{tenantId}/complete-step",
			Service: clients.ServiceTenant, Target: Pattern("/api/v1/onboarding/{tenantId}/complete-step"),
			Auth: AuthHeader, MissingAuthMessage: msgTokenMissing,
			Body:           BodyForward,
			ErrorKey:       "error",
			FailureMessage: msgTenantDown,
			TimeoutMessage: msgTenantTimeout,
			SuccessStatus:  http.StatusOK,
		},
	}
}
