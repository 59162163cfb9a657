package department

import "github.com/medflow/medflow/internal/census"

// Department is a hospital ward with a fixed bed capacity.
type Department struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	TotalBeds        int    `json:"totalBeds"`
	OccupiedBeds     int    `json:"occupiedBeds"`
	HeadOfDepartment string `json:"headOfDepartment"`
}

func (d Department) GetID() int64               { return d.ID }
func (d Department) WithID(id int64) Department { d.ID = id; return d }
func (d Department) DisplayName() string        { return d.Name }

// OccupancyRate is the whole-percent bed occupancy, clamped to [0, 100].
func (d Department) OccupancyRate() int {
	return census.OccupancyRate(d.OccupiedBeds, d.TotalBeds)
}

// AvailableBeds is the number of free beds, never negative.
func (d Department) AvailableBeds() int {
	if free := d.TotalBeds - d.OccupiedBeds; free > 0 {
		return free
	}
	return 0
}

// Head returns the head of department or "Not Assigned".
func (d Department) Head() string {
	if d.HeadOfDepartment == "" {
		return "Not Assigned"
	}
	return d.HeadOfDepartment
}
