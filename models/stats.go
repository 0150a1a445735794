package models

type ProductStats struct {
	Total      int64           `json:"totalProducts"`
	OutOfStock int64           `json:"outOfStock"`
	AvgRating  float64         `json:"avgRating"`
	Categories []CategoryCount `json:"categories"`
}

type OrderStats struct {
	Total    int64            `json:"orders"`
	Revenue  float64          `json:"revenue"`
	ByStatus map[string]int64 `json:"byStatus"`
}

type AdminStats struct {
	Users      int64            `json:"users"`
	Products   int64            `json:"products"`
	Orders     int64            `json:"orders"`
	Revenue    float64          `json:"revenue"`
	ByStatus   map[string]int64 `json:"orderStatus"`
	Categories []CategoryCount  `json:"categories"`
}

type ManagerStats struct {
	TotalProducts int64           `json:"totalProducts"`
	OutOfStock    int64           `json:"outOfStock"`
	PendingOrders int64           `json:"pendingOrders"`
	AvgRating     float64         `json:"avgRating"`
	Categories    []CategoryCount `json:"categories"`
}

type UserStats struct {
	Orders    int64   `json:"orders"`
	Spent     float64 `json:"spent"`
	Pending   int64   `json:"pending"`
	Shipped   int64   `json:"shipped"`
	Delivered int64   `json:"delivered"`
	Cancelled int64   `json:"cancelled"`
}
