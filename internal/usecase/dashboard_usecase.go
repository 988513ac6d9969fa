package usecase

import (
	"context"
	"sort"
	"time"

	"health-program-api/internal/converter"
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardListSize    = 5
	dashboardTrendMonths = 6
)

type DashboardUsecase interface {
	Get(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardUsecase struct {
	log            *logrus.Logger
	clientRepo     repository.ClientRepository
	programRepo    repository.HealthProgramRepository
	enrollmentRepo repository.EnrollmentRepository
	now            func() time.Time
}

func NewDashboardUsecase(
	log *logrus.Logger,
	clientRepo repository.ClientRepository,
	programRepo repository.HealthProgramRepository,
	enrollmentRepo repository.EnrollmentRepository,
) DashboardUsecase {
	return &dashboardUsecase{
		log:            log,
		clientRepo:     clientRepo,
		programRepo:    programRepo,
		enrollmentRepo: enrollmentRepo,
		now:            time.Now,
	}
}

// Get computes every dashboard figure at request time. The queries are
// independent and run concurrently; the first failure cancels the rest.
func (u *dashboardUsecase) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		totalClients, totalPrograms, enrolledClients int64
		recentClients                                []entity.ClientWithCount
		recentPrograms, topPrograms                  []entity.ProgramWithCount
		monthly                                      []entity.MonthlyCount
	)

	since := trendStart(u.now())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalClients, err = u.clientRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		totalPrograms, err = u.programRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		enrolledClients, err = u.clientRepo.CountEnrolled(gctx)
		return err
	})
	g.Go(func() (err error) {
		recentClients, err = u.clientRepo.FindRecentWithCounts(gctx, dashboardListSize)
		return err
	})
	g.Go(func() (err error) {
		recentPrograms, err = u.programRepo.FindRecentWithCounts(gctx, dashboardListSize)
		return err
	})
	g.Go(func() (err error) {
		topPrograms, err = u.programRepo.FindTopByEnrollments(gctx, dashboardListSize)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = u.enrollmentRepo.CountByMonthSince(gctx, since)
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to compute dashboard: %+v", err)
		return nil, err
	}

	return &dto.DashboardResponse{
		TotalClients:    totalClients,
		TotalPrograms:   totalPrograms,
		EnrolledClients: enrolledClients,
		EnrollmentRate:  enrollmentRate(enrolledClients, totalClients).StringFixed(2),
		RecentClients:   converter.ClientsWithCountToDashboard(recentClients),
		RecentPrograms:  converter.ProgramsWithCountToDashboard(recentPrograms),
		TopPrograms:     converter.ProgramsWithCountToDashboard(topPrograms),
		EnrollmentTrend: buildTrend(monthly),
	}, nil
}

// enrollmentRate is enrolled/total as a percentage rounded to two places.
func enrollmentRate(enrolled, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(enrolled).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 2)
}

// trendStart is the first instant of the oldest trend month, so every bucket
// covers a whole calendar month and the current one is the last.
func trendStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-(dashboardTrendMonths-1), 1, 0, 0, 0, 0, time.UTC)
}

// buildTrend returns the non-empty month buckets in ascending order.
func buildTrend(counts []entity.MonthlyCount) []dto.TrendPoint {
	points := make([]dto.TrendPoint, 0, len(counts))
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		points = append(points, dto.TrendPoint{Month: c.Month, Count: c.Count})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Month < points[j].Month
	})
	return points
}
