package domain

// Overview summarizes a set of records.
type Overview struct {
	Period               TimePeriod
	TotalServices        int
	Technicians          int
	Cities               int
	DailyAverage         float64
	TechnicianValueTotal float64
	CompanyValueTotal    float64
	Located              int
	Unparsed             int
}

// TechnicianMetrics aggregates executed services of one technician.
type TechnicianMetrics struct {
	TechnicianID       string
	DaysWorked         int
	ContractsExecuted  int
	TotalValue         float64
	ContractsPerDay    float64
	ValuePerDay        float64
	StatusDistribution map[string]int
}

// CityMetrics aggregates services of one city.
type CityMetrics struct {
	City      string
	Services  int
	Completed int
	ByStatus  map[string]int
}
