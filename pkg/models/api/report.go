package api

type Overview struct {
	Period               TimePeriod `json:"period"`
	TotalServices        int        `json:"total_services"`
	Technicians          int        `json:"technicians"`
	Cities               int        `json:"cities"`
	DailyAverage         float64    `json:"daily_average"`
	TechnicianValueTotal float64    `json:"technician_value_total"`
	CompanyValueTotal    float64    `json:"company_value_total"`
	Located              int        `json:"located"`
	Unparsed             int        `json:"unparsed"`
}

type TechnicianMetrics struct {
	TechnicianID       string         `json:"technician_id"`
	DaysWorked         int            `json:"days_worked"`
	ContractsExecuted  int            `json:"contracts_executed"`
	TotalValue         float64        `json:"total_value"`
	ContractsPerDay    float64        `json:"contracts_per_day"`
	ValuePerDay        float64        `json:"value_per_day"`
	StatusDistribution map[string]int `json:"status_distribution"`
}

type CityMetrics struct {
	City      string         `json:"city"`
	Services  int            `json:"services"`
	Completed int            `json:"completed"`
	ByStatus  map[string]int `json:"by_status"`
}

type FilterOptions struct {
	Cities      []string `json:"cities"`
	Technicians []string `json:"technicians"`
	Bases       []string `json:"bases"`
	BaseTypes   []string `json:"base_types"`
	Services    []string `json:"services"`
	Statuses    []string `json:"statuses"`
}
