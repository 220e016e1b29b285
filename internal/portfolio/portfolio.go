// Package portfolio aggregates the stored project collection for the admin
// overview.
package portfolio

import (
	"sort"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/pkg/mathutil"
)

// UserCount is the number of projects owned by one user.
type UserCount struct {
	UserID   string `json:"userId"`
	Projects int    `json:"projects"`
}

// Summary is the read-only aggregate over all projects.
type Summary struct {
	Projects         int                       `json:"projects"`
	LightProjects    int                       `json:"lightProjects"`
	ProProjects      int                       `json:"proProjects"`
	TotalCostOfProof float64                   `json:"totalCostOfProof"`
	TotalScaleGain   float64                   `json:"totalScaleGain"`
	AverageScore     float64                   `json:"averageScore"`
	AverageICV       float64                   `json:"averageIcv"`
	Viable           int                       `json:"viable"`
	Bands            map[project.ScoreBand]int `json:"bands"`
	Users            []UserCount               `json:"users"`
}

// Summarize aggregates projects. Averages are zero for an empty collection.
func Summarize(projects []*project.Project) Summary {
	s := Summary{
		Bands: map[project.ScoreBand]int{
			project.BandHigh:   0,
			project.BandMedium: 0,
			project.BandLow:    0,
		},
		Users: []UserCount{},
	}
	perUser := make(map[string]int)
	var scoreSum, icvSum float64
	for _, p := range projects {
		if p == nil {
			continue
		}
		s.Projects++
		switch p.Mode {
		case engine.ModeLight:
			s.LightProjects++
		case engine.ModePro:
			s.ProProjects++
		}
		s.TotalCostOfProof += p.Financials.CostOfProof
		s.TotalScaleGain += p.Financials.ScaleEconomicGain
		scoreSum += p.Score
		icvSum += p.ICVScore
		if p.ROI > 0 {
			s.Viable++
		}
		s.Bands[project.Band(p.Score)]++
		perUser[p.UserID]++
	}

	s.AverageScore = mathutil.Round(mathutil.SafeDivide(scoreSum, float64(s.Projects)))
	s.AverageICV = mathutil.Round(mathutil.SafeDivide(icvSum, float64(s.Projects)))

	for user, n := range perUser {
		s.Users = append(s.Users, UserCount{UserID: user, Projects: n})
	}
	sort.Slice(s.Users, func(i, j int) bool {
		if s.Users[i].Projects != s.Users[j].Projects {
			return s.Users[i].Projects > s.Users[j].Projects
		}
		return s.Users[i].UserID < s.Users[j].UserID
	})
	return s
}
