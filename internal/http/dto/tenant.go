package dto

type TenantSummary struct {
	ID   any `json:"id"`
	Name any `json:"name"`
}

type SelectTenantRequest struct {
	TenantID string `json:"tenantId"`
}

type SelectTenantResponse struct {
	TenantID string `json:"tenantId"`
}

type OnboardingProgress struct {
	CurrentStep    int   `json:"currentStep"`
	CompletedSteps []int `json:"completedSteps"`
	IsComplete     bool  `json:"isComplete"`
}

type StepResult struct {
	Success bool `json:"success"`
}
