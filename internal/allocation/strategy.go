package allocation

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

// Strategy orders students into seats. The set of strategies is closed; use LookupStrategy.
type Strategy interface {
	Name() models.StrategyName
	source(students []models.Student, rng *rand.Rand) seatSource
}

// seatSource yields students for consecutive seats. It is owned by a single allocation call.
type seatSource interface {
	beginRoom()
	next() (models.Student, int, bool)
	remaining() []models.Student
}

var strategies = map[models.StrategyName]Strategy{
	models.StrategyFill:      fillStrategy{},
	models.StrategyBranchMix: branchMixStrategy{},
}

// LookupStrategy resolves a strategy by name. An empty name selects fill.
func LookupStrategy(name string) (Strategy, error) {
	key := models.StrategyName(strings.ToLower(strings.TrimSpace(name)))
	if key == "" {
		key = models.StrategyFill
	}
	s, ok := strategies[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown seating strategy %q", name))
	}
	return s, nil
}

// StrategyNames lists the available strategies in a stable order.
func StrategyNames() []models.StrategyName {
	names := make([]models.StrategyName, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

type fillStrategy struct{}

func (fillStrategy) Name() models.StrategyName { return models.StrategyFill }

func (fillStrategy) source(students []models.Student, rng *rand.Rand) seatSource {
	queue := append([]models.Student(nil), students...)
	rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })
	return &queueSource{queue: queue}
}

type queueSource struct {
	queue []models.Student
}

func (q *queueSource) beginRoom() {}

func (q *queueSource) next() (models.Student, int, bool) {
	if len(q.queue) == 0 {
		return models.Student{}, 0, false
	}
	s := q.queue[0]
	q.queue = q.queue[1:]
	return s, 0, true
}

func (q *queueSource) remaining() []models.Student {
	return append([]models.Student(nil), q.queue...)
}

type branchMixStrategy struct{}

func (branchMixStrategy) Name() models.StrategyName { return models.StrategyBranchMix }

// source splits the largest branch into series one and everyone else into series two.
// Groups of equal size keep first-appearance order.
func (branchMixStrategy) source(students []models.Student, rng *rand.Rand) seatSource {
	var order []string
	groups := make(map[string][]models.Student)
	for _, s := range students {
		key := s.BranchKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}
	for _, key := range order {
		g := groups[key]
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(groups[order[i]]) > len(groups[order[j]])
	})

	src := &seriesSource{}
	for i, key := range order {
		if i == 0 {
			src.series1 = groups[key]
			continue
		}
		src.series2 = append(src.series2, groups[key]...)
	}
	rng.Shuffle(len(src.series2), func(i, j int) { src.series2[i], src.series2[j] = src.series2[j], src.series2[i] })
	return src
}

// seriesSource alternates series one and two seat by seat, restarting parity per room.
// When the preferred series runs dry the other one is drawn from.
type seriesSource struct {
	series1 []models.Student
	series2 []models.Student
	seat    int
}

func (s *seriesSource) beginRoom() { s.seat = 0 }

func (s *seriesSource) next() (models.Student, int, bool) {
	first := s.seat%2 == 0
	s.seat++
	if first {
		if st, ok := pop(&s.series1); ok {
			return st, 1, true
		}
		if st, ok := pop(&s.series2); ok {
			return st, 2, true
		}
		return models.Student{}, 0, false
	}
	if st, ok := pop(&s.series2); ok {
		return st, 2, true
	}
	if st, ok := pop(&s.series1); ok {
		return st, 1, true
	}
	return models.Student{}, 0, false
}

func (s *seriesSource) remaining() []models.Student {
	out := make([]models.Student, 0, len(s.series1)+len(s.series2))
	out = append(out, s.series1...)
	return append(out, s.series2...)
}

func pop(queue *[]models.Student) (models.Student, bool) {
	if len(*queue) == 0 {
		return models.Student{}, false
	}
	s := (*queue)[0]
	*queue = (*queue)[1:]
	return s, true
}
