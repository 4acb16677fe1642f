package dto

type IncrementAchievementRequest struct {
	Metric string `json:"metric" binding:"required,min=1,max=64"`
}

type IncrementAchievementResponse struct {
	Username string `json:"username"`
	Metric   string `json:"metric"`
	Value    int64  `json:"value"`
}

type AchievementCountersResponse struct {
	Username string           `json:"username"`
	Counters map[string]int64 `json:"counters"`
}
