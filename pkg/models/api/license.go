package api

type Assignment struct {
	SKU           string   `json:"sku"`
	SKUID         string   `json:"sku_id"`
	Source        string   `json:"source"`
	Group         string   `json:"group,omitempty"`
	State         string   `json:"state,omitempty"`
	Error         string   `json:"error,omitempty"`
	DisabledPlans []string `json:"disabled_plans,omitempty"`
}

type UserLicenses struct {
	UPN         string       `json:"upn"`
	DisplayName string       `json:"display_name"`
	Direct      int          `json:"direct"`
	Group       int          `json:"group"`
	Assignments []Assignment `json:"assignments"`
}

type GroupUsage struct {
	Group   string   `json:"group"`
	Users   int      `json:"users"`
	Members []string `json:"members"`
}

type SKUComparison struct {
	SKUA    string `json:"sku_a"`
	SKUB    string `json:"sku_b"`
	Total   int    `json:"total"`
	Failed  int    `json:"failed"`
	OnlyA   int    `json:"only_a"`
	OnlyB   int    `json:"only_b"`
	Both    int    `json:"both"`
	Neither int    `json:"neither"`
}
