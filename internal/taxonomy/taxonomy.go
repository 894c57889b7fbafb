// Package taxonomy holds the fixed catalog tables: branches, semesters,
// categories, first-year streams and cycles. Stored records may carry ids
// that are not in these tables; lookups then fall back to the raw value.
package taxonomy

import (
	"fmt"
	"strconv"
)

// FirstYear is the pseudo-branch used by first-year records.
const FirstYear = "first-year"

// Branch is an engineering department.
type Branch struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Icon      string `json:"icon"`
}

// Category is a kind of study material.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Stream is a first-year stream.
type Stream struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Icon      string `json:"icon"`
}

// Cycle is a first-year cycle.
type Cycle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the full set of tables served to clients.
type Catalog struct {
	Branches   []Branch   `json:"branches"`
	Semesters  []int      `json:"semesters"`
	Categories []Category `json:"categories"`
	Streams    []Stream   `json:"firstYearStreams"`
	Cycles     []Cycle    `json:"cycles"`
}

var branches = []Branch{
	{ID: "civil-engineering", Name: "Civil Engineering", ShortName: "CE", Icon: "Building2"},
	{ID: "mechanical-engineering", Name: "Mechanical Engineering", ShortName: "ME", Icon: "Cog"},
	{ID: "electrical-electronics-engineering", Name: "Electrical and Electronics Engineering", ShortName: "EEE", Icon: "Zap"},
	{ID: "electronics-communication-engineering", Name: "Electronics and Communication Engineering", ShortName: "ECE", Icon: "Radio"},
	{ID: "computer-science-engineering", Name: "Computer Science and Engineering", ShortName: "CSE", Icon: "Monitor"},
	{ID: "electronics-instrumentation-engineering", Name: "Electronics and Instrumentation Engineering", ShortName: "EIE", Icon: "Gauge"},
	{ID: "industrial-engineering-management", Name: "Industrial Engineering and Management", ShortName: "IEM", Icon: "Factory"},
	{ID: "electronics-telecommunication-engineering", Name: "Electronics and Telecommunication Engineering", ShortName: "ETE", Icon: "Satellite"},
	{ID: "information-science-engineering", Name: "Information Science and Engineering", ShortName: "ISE", Icon: "Database"},
	{ID: "artificial-intelligence-machine-learning", Name: "Artificial Intelligence and Machine Learning", ShortName: "AIML", Icon: "Brain"},
	{ID: "cse-iot-cybersecurity-blockchain", Name: "CSE (IOT & Cyber Security, Blockchain Technology)", ShortName: "CSE-ICB", Icon: "Shield"},
	{ID: "cse-data-science", Name: "Computer Science & Engineering (Data Science)", ShortName: "CSE-DS", Icon: "BarChart3"},
	{ID: "robotics-artificial-intelligence", Name: "Robotics & Artificial Intelligence", ShortName: "RAI", Icon: "Bot"},
}

var semesters = []int{3, 4, 5, 6, 7, 8}

var categories = []Category{
	{ID: "class-notes", Name: "Class Notes", Icon: "BookOpen"},
	{ID: "internal-papers", Name: "Internal Question Papers", Icon: "FileText"},
	{ID: "see-pyqs", Name: "SEE PYQs", Icon: "GraduationCap"},
}

var streams = []Stream{
	{ID: "electrical", Name: "Electrical (EEE) Stream", ShortName: "EEE", Icon: "Zap"},
	{ID: "cse", Name: "Computer Science (CSE) Stream", ShortName: "CSE", Icon: "Monitor"},
	{ID: "mechanical", Name: "Mechanical (ME) Stream", ShortName: "ME", Icon: "Cog"},
	{ID: "civil", Name: "Civil (CV) Stream", ShortName: "CV", Icon: "Building2"},
}

var cycles = []Cycle{
	{ID: "p-cycle", Name: "P - Cycle"},
	{ID: "c-cycle", Name: "C - Cycle"},
}

// All returns copies of every table.
func All() Catalog {
	return Catalog{
		Branches:   append([]Branch(nil), branches...),
		Semesters:  append([]int(nil), semesters...),
		Categories: append([]Category(nil), categories...),
		Streams:    append([]Stream(nil), streams...),
		Cycles:     append([]Cycle(nil), cycles...),
	}
}

// LookupBranch finds a branch by id.
func LookupBranch(id string) (Branch, bool) {
	for _, b := range branches {
		if b.ID == id {
			return b, true
		}
	}
	return Branch{}, false
}

// LookupCategory finds a category by id.
func LookupCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// LookupStream finds a first-year stream by id.
func LookupStream(id string) (Stream, bool) {
	for _, s := range streams {
		if s.ID == id {
			return s, true
		}
	}
	return Stream{}, false
}

// LookupCycle finds a first-year cycle by id.
func LookupCycle(id string) (Cycle, bool) {
	for _, c := range cycles {
		if c.ID == id {
			return c, true
		}
	}
	return Cycle{}, false
}

// BranchLabel renders the short name of a branch, or the raw id.
func BranchLabel(id string) string {
	if b, ok := LookupBranch(id); ok {
		return b.ShortName
	}
	return id
}

// BranchName renders the full name of a branch, or the raw id.
func BranchName(id string) string {
	if b, ok := LookupBranch(id); ok {
		return b.Name
	}
	return id
}

// CategoryLabel renders a category name, or the raw id.
func CategoryLabel(id string) string {
	if c, ok := LookupCategory(id); ok {
		return c.Name
	}
	return id
}

// FirstYearLabel renders "1st Year <stream> <cycle>" with per-part fallback.
func FirstYearLabel(stream, cycle string) string {
	streamLabel := stream
	if s, ok := LookupStream(stream); ok {
		streamLabel = s.ShortName
	}
	cycleLabel := cycle
	if c, ok := LookupCycle(cycle); ok {
		cycleLabel = c.Name
	}
	return fmt.Sprintf("1st Year %s %s", streamLabel, cycleLabel)
}

// LocationLabel renders where a record is filed. First-year records use the
// stream and cycle; everything else uses branch and semester.
func LocationLabel(branch string, semester *int, stream, cycle string) string {
	if branch == FirstYear {
		return FirstYearLabel(stream, cycle)
	}
	label := BranchLabel(branch)
	if semester != nil {
		label += " Sem " + strconv.Itoa(*semester)
	}
	return label
}
