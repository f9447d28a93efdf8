package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cppla/vitalog/analytics"
	"github.com/cppla/vitalog/models"
)

const analyticsCacheTTL = 10 * time.Minute

// DashboardWindows are the look-back periods shown on the dashboard.
var DashboardWindows = []int{7, 30, 90}

// JSONCacher is a key/value cache of JSON documents.
type JSONCacher interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration)
}

// Dashboard bundles the summaries for every DashboardWindows period.
type Dashboard struct {
	Today     string                       `json:"today"`
	Summaries map[string]analytics.Summary `json:"summaries"`
	Weekly    []analytics.WeeklyBucket     `json:"weekly"`
	Recent    []models.CheckinResponse     `json:"recent"`
}

// AnalyticsService serves cached aggregates over a user's recent check-ins.
type AnalyticsService struct {
	checkins *CheckinService
	cache    JSONCacher
}

func NewAnalyticsService(checkins *CheckinService, cache JSONCacher) *AnalyticsService {
	return &AnalyticsService{checkins: checkins, cache: cache}
}

// Summary aggregates the last days days of check-ins.
func (s *AnalyticsService) Summary(ctx context.Context, userID uint, days int) (analytics.Summary, error) {
	key := s.key(userID, "summary", days)
	var cached analytics.Summary
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	records, err := s.checkins.ListRecent(ctx, userID, days)
	if err != nil {
		return analytics.Summary{}, err
	}
	summary := analytics.Summarize(records)
	s.store(ctx, key, summary)
	return summary, nil
}

// Weekly buckets the last days days of check-ins into runs of seven records.
func (s *AnalyticsService) Weekly(ctx context.Context, userID uint, days int) ([]analytics.WeeklyBucket, error) {
	key := s.key(userID, "weekly", days)
	var cached []analytics.WeeklyBucket
	if s.lookup(ctx, key, &cached) && cached != nil {
		return cached, nil
	}
	records, err := s.checkins.ListRecent(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	buckets := analytics.WeeklyBuckets(records)
	s.store(ctx, key, buckets)
	return buckets, nil
}

// Dashboard loads the longest window once and derives every shorter one from it.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint) (Dashboard, error) {
	longest := DashboardWindows[len(DashboardWindows)-1]
	key := s.key(userID, "dashboard", longest)
	var cached Dashboard
	if s.lookup(ctx, key, &cached) && cached.Summaries != nil {
		return cached, nil
	}

	records, err := s.checkins.ListRecent(ctx, userID, longest)
	if err != nil {
		return Dashboard{}, err
	}
	today := s.checkins.Today()
	d := Dashboard{
		Today:     today.Format(models.DateLayout),
		Summaries: make(map[string]analytics.Summary, len(DashboardWindows)),
	}
	for _, days := range DashboardWindows {
		d.Summaries[fmt.Sprintf("last%dDays", days)] = analytics.Summarize(within(records, today, days))
	}
	d.Weekly = analytics.WeeklyBuckets(within(records, today, 30))
	d.Recent = models.CheckinResponses(within(records, today, 7))
	s.store(ctx, key, d)
	return d, nil
}

// within keeps records dated on or after today-days, preserving order.
func within(records []models.CheckinRecord, today time.Time, days int) []models.CheckinRecord {
	since := today.AddDate(0, 0, -days)
	out := make([]models.CheckinRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

// key embeds today's date so cached entries roll over at midnight.
func (s *AnalyticsService) key(userID uint, kind string, days int) string {
	return fmt.Sprintf("%s%s:%d:%s", AnalyticsCachePrefix(userID), kind, days, s.checkins.Today().Format(models.DateLayout))
}

func (s *AnalyticsService) lookup(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.GetJSON(ctx, key, dst)
}

func (s *AnalyticsService) store(ctx context.Context, key string, v interface{}) {
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, v, analyticsCacheTTL)
	}
}
