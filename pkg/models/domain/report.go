package domain

import "time"

// Report is a printable summary of one loaded period.
type Report struct {
	Title           string
	Period          TimePeriod
	Services        int
	TechnicianValue float64
	CompanyValue    float64
	Currency        string
	Sections        []ReportSection
}

type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // calendar days, inclusive
}

type ReportSection struct {
	Title   string
	Summary map[string]any
	Details []ReportDetail
}

// ReportDetail is one ranked line of a section.
type ReportDetail struct {
	Name  string
	Value any
	Unit  string
	Note  string
}
