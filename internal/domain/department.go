package domain

import (
	"fmt"
	"strings"
)

// Department is the fixed routing category a ticket is assigned to.
type Department string

const (
	DepartmentIT    Department = "it"
	DepartmentHR    Department = "hr"
	DepartmentAdmin Department = "admin"
)

// AllDepartments lists every routable department.
func AllDepartments() []Department {
	return []Department{DepartmentIT, DepartmentHR, DepartmentAdmin}
}

// Valid reports whether the department is a member of the fixed set.
func (d Department) Valid() bool {
	switch d {
	case DepartmentIT, DepartmentHR, DepartmentAdmin:
		return true
	}
	return false
}

// ParseDepartment normalizes and validates a department value.
func ParseDepartment(raw string) (Department, error) {
	dept := Department(strings.ToLower(strings.TrimSpace(raw)))
	if !dept.Valid() {
		return "", fmt.Errorf("unknown department %q", raw)
	}
	return dept, nil
}
