package domain

// Rewards summarises the points a user has accrued across their transactions.
type Rewards struct {
	Points      int64    `json:"points"`
	RewardsList []string `json:"rewards_list"`
}
