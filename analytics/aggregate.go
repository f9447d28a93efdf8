// Package analytics derives summary statistics from check-in records.
// Every function is pure: the result depends only on the input slice.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/cppla/vitalog/models"
)

const (
	// BucketSize is the number of consecutive records per weekly bucket.
	BucketSize = 7
	// NeutralMoodScore is used for empty or unrecognised mood labels.
	NeutralMoodScore = 5

	AreaSleep        = "sleep"
	AreaEnergy       = "energy"
	AreaProductivity = "productivity"
	AreaMood         = "mood"
	AreaAllGood      = "all_good"

	sleepHoursThreshold   = 7.0
	energyThreshold       = 6.0
	productivityThreshold = 6.0
	moodThreshold         = 6.0
)

var moodScores = map[string]int{
	"terrible":  1,
	"awful":     2,
	"bad":       3,
	"low":       4,
	"okay":      5,
	"neutral":   5,
	"fine":      6,
	"good":      7,
	"great":     8,
	"excellent": 9,
	"amazing":   10,
}

// Summary aggregates a window of check-ins.
type Summary struct {
	Count           int      `json:"count"`
	AvgSleepHours   float64  `json:"avgSleepHours"`
	AvgSleepQuality float64  `json:"avgSleepQuality"`
	AvgEnergy       float64  `json:"avgEnergy"`
	AvgProductivity float64  `json:"avgProductivity"`
	AvgMoodScore    float64  `json:"avgMoodScore"`
	BestDay         *BestDay `json:"bestDay"`
	ImprovementArea string   `json:"improvementArea"`
}

// BestDay identifies the highest scoring record of a window.
type BestDay struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// WeeklyBucket averages up to BucketSize consecutive records.
type WeeklyBucket struct {
	Week            int     `json:"week"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Count           int     `json:"count"`
	AvgSleepHours   float64 `json:"avgSleepHours"`
	AvgEnergy       float64 `json:"avgEnergy"`
	AvgProductivity float64 `json:"avgProductivity"`
	AvgMoodScore    float64 `json:"avgMoodScore"`
}

// EnergyAverage is the mean of the three energy ratings. A missing rating
// counts as 0, so incomplete check-ins score lower; existing dashboards
// depend on this.
func EnergyAverage(rec models.CheckinRecord) float64 {
	return float64(intOrZero(rec.EnergyMorning)+intOrZero(rec.EnergyAfternoon)+intOrZero(rec.EnergyEvening)) / 3
}

// MoodScore maps a mood label onto the 1-10 scale.
func MoodScore(label *string) int {
	if label == nil {
		return NeutralMoodScore
	}
	if score, ok := moodScores[strings.ToLower(strings.TrimSpace(*label))]; ok {
		return score
	}
	return NeutralMoodScore
}

// DayScore is the unweighted mean of sleep quality, energy average,
// productivity rating and mood score, with missing values as 0.
func DayScore(rec models.CheckinRecord) float64 {
	return (float64(intOrZero(rec.SleepQuality)) +
		EnergyAverage(rec) +
		float64(intOrZero(rec.ProductivityRating)) +
		float64(MoodScore(rec.Mood))) / 4
}

// Summarize aggregates records in whatever window the caller supplies.
func Summarize(records []models.CheckinRecord) Summary {
	s := Summary{Count: len(records), ImprovementArea: AreaAllGood}
	if len(records) == 0 {
		return s
	}

	var sleep, quality, productivity mean
	var energy, mood float64
	for _, r := range records {
		sleep.addFloat(r.SleepHours)
		quality.addInt(r.SleepQuality)
		productivity.addInt(r.ProductivityRating)
		energy += EnergyAverage(r)
		mood += float64(MoodScore(r.Mood))
	}
	n := float64(len(records))

	s.AvgSleepHours = sleep.value()
	s.AvgSleepQuality = quality.value()
	s.AvgEnergy = energy / n
	s.AvgProductivity = productivity.value()
	s.AvgMoodScore = mood / n
	s.ImprovementArea = ImprovementArea(s)

	// Thresholds apply to the exact means; only the output is rounded.
	s.AvgSleepHours = round2(s.AvgSleepHours)
	s.AvgSleepQuality = round2(s.AvgSleepQuality)
	s.AvgEnergy = round2(s.AvgEnergy)
	s.AvgProductivity = round2(s.AvgProductivity)
	s.AvgMoodScore = round2(s.AvgMoodScore)
	s.BestDay = FindBestDay(records)
	return s
}

// FindBestDay returns the record with the highest DayScore; ties go to the
// earliest record in input order. Nil for empty input.
func FindBestDay(records []models.CheckinRecord) *BestDay {
	if len(records) == 0 {
		return nil
	}
	bestIdx, bestScore := 0, DayScore(records[0])
	for i := 1; i < len(records); i++ {
		if score := DayScore(records[i]); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return &BestDay{
		Date:  records[bestIdx].Date.Format(models.DateLayout),
		Score: round2(bestScore),
	}
}

// ImprovementArea names the first metric, in the order sleep, energy,
// productivity, mood, whose average is below its threshold.
func ImprovementArea(s Summary) string {
	if s.Count == 0 {
		return AreaAllGood
	}
	switch {
	case s.AvgSleepHours < sleepHoursThreshold:
		return AreaSleep
	case s.AvgEnergy < energyThreshold:
		return AreaEnergy
	case s.AvgProductivity < productivityThreshold:
		return AreaProductivity
	case s.AvgMoodScore < moodThreshold:
		return AreaMood
	}
	return AreaAllGood
}

// WeeklyBuckets orders a copy of records by date and averages every run of
// BucketSize consecutive records. These are not calendar weeks. The last
// bucket may be short.
func WeeklyBuckets(records []models.CheckinRecord) []WeeklyBucket {
	sorted := make([]models.CheckinRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	buckets := make([]WeeklyBucket, 0, (len(sorted)+BucketSize-1)/BucketSize)
	for start := 0; start < len(sorted); start += BucketSize {
		end := start + BucketSize
		if end > len(sorted) {
			end = len(sorted)
		}
		chunk := sorted[start:end]

		var sleep, productivity mean
		var energy, mood float64
		for _, r := range chunk {
			sleep.addFloat(r.SleepHours)
			productivity.addInt(r.ProductivityRating)
			energy += EnergyAverage(r)
			mood += float64(MoodScore(r.Mood))
		}
		n := float64(len(chunk))
		buckets = append(buckets, WeeklyBucket{
			Week:            len(buckets) + 1,
			StartDate:       chunk[0].Date.Format(models.DateLayout),
			EndDate:         chunk[len(chunk)-1].Date.Format(models.DateLayout),
			Count:           len(chunk),
			AvgSleepHours:   round2(sleep.value()),
			AvgEnergy:       round2(energy / n),
			AvgProductivity: round2(productivity.value()),
			AvgMoodScore:    round2(mood / n),
		})
	}
	return buckets
}

// mean averages only the values that are present.
type mean struct {
	sum float64
	n   int
}

func (m *mean) addFloat(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

func (m *mean) addInt(v *int) {
	if v != nil {
		m.sum += float64(*v)
		m.n++
	}
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
