package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"challengeboard/internal/config"
	"challengeboard/internal/models"
	"challengeboard/internal/repository"
	"challengeboard/internal/service"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TotalTeams       = 40
	SolveProbability = 0.6
)

var challengeSpecs = []struct {
	link       string
	title      string
	maxPoints  int
	tokenCount int
	maxSubs    int
}{
	{"web-intro", "Intro Web", 100, 1, 5},
	{"crypto-classic", "Classic Ciphers", 200, 1, 5},
	{"forensics-chain", "Evidence Chain", 300, 3, 3},
	{"pwn-ladder", "Privilege Ladder", 500, 2, 3},
}

func main() {
	log.Println("🌱 Starting seeder for Challengeboard...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	repo := repository.NewPostgresRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database migrations completed")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gameStart := time.Now().Add(-4 * time.Hour)

	game := models.Game{
		ID:          uuid.NewString(),
		Name:        "Challengeboard Open",
		MaxTeamSize: 4,
		Active:      true,
	}
	boards := []models.Board{
		{ID: uuid.NewString(), GameID: game.ID, Name: "Qualifier", MaxMinutes: 480},
		{ID: uuid.NewString(), GameID: game.ID, Name: "Finals", MaxMinutes: 240},
	}
	if err := db.Create(&game).Error; err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}
	if err := db.Create(&boards).Error; err != nil {
		log.Fatalf("Failed to create boards: %v", err)
	}

	challenges := make([]models.Challenge, 0, len(challengeSpecs))
	for _, spec := range challengeSpecs {
		challenges = append(challenges, models.Challenge{
			ID:             uuid.NewString(),
			LinkID:         spec.link,
			Title:          spec.title,
			MaxPoints:      spec.maxPoints,
			TokenCount:     spec.tokenCount,
			MaxSubmissions: spec.maxSubs,
		})
	}
	if err := db.Create(&challenges).Error; err != nil {
		log.Fatalf("Failed to create challenges: %v", err)
	}

	log.Printf("🌱 Generating %d teams with gameplay on board %q...", TotalTeams, boards[0].Name)
	for i := 1; i <= TotalTeams; i++ {
		if err := seedTeam(db, rng, &game, &boards[0], challenges, i, gameStart); err != nil {
			log.Fatalf("Failed to seed team %d: %v", i, err)
		}
	}

	// Compute once so the cache has content to show immediately.
	svc := service.NewLeaderboardService(repo, repository.NewMemoryCache(), nil, 10)
	changed, err := svc.Calculate(context.Background())
	if err != nil {
		log.Fatalf("Failed to compute seeded leaderboard: %v", err)
	}

	log.Printf("✅ Seeding completed successfully!")
	for _, lb := range changed {
		log.Printf("\n📊 Board %s — top %d:", lb.BoardID, len(lb.Scores))
		for _, s := range lb.Scores {
			log.Printf("   %d. %s — %d pts in %s", s.Rank, s.Name, s.Score,
				time.Duration(s.DurationMS)*time.Millisecond)
		}
	}

	repo.Close()
	log.Println("\n🎉 Seeder finished!")
}

// seedTeam creates one team, its board enrollment, and a random set of
// problems with graded submission histories.
func seedTeam(db *gorm.DB, rng *rand.Rand, game *models.Game, board *models.Board, challenges []models.Challenge, n int, start time.Time) error {
	team := models.Team{
		ID:           uuid.NewString(),
		Name:         fmt.Sprintf("team-%02d", n),
		Organization: fmt.Sprintf("org-%d", (n%5)+1),
		Number:       n,
		Updated:      start,
	}
	if err := db.Create(&team).Error; err != nil {
		return err
	}

	enrollment := models.TeamBoard{TeamID: team.ID, BoardID: board.ID, Start: start}
	if err := db.Create(&enrollment).Error; err != nil {
		return err
	}

	for _, ch := range challenges {
		if rng.Float64() > SolveProbability {
			continue
		}
		if err := seedProblem(db, rng, &team, board, &ch, start); err != nil {
			return err
		}
	}
	return nil
}

// seedProblem creates one problem and a short submission history: a few
// incorrect attempts and, usually, a final correct one.
func seedProblem(db *gorm.DB, rng *rand.Rand, team *models.Team, board *models.Board, ch *models.Challenge, start time.Time) error {
	solved := rng.Float64() < 0.7
	link := ch.LinkID

	problem := models.Problem{
		ID:              uuid.NewString(),
		TeamID:          team.ID,
		BoardID:         board.ID,
		ChallengeLinkID: &link,
		Start:           start,
		Status:          models.ProblemReady,
	}
	if solved {
		problem.Score = ch.MaxPoints
		problem.Status = models.ProblemSuccess
	}
	if err := db.Create(&problem).Error; err != nil {
		return err
	}

	at := start.Add(time.Duration(5+rng.Intn(120)) * time.Minute)
	misses := rng.Intn(3)
	for i := 0; i < misses; i++ {
		if err := createSubmission(db, &problem, at, false, ch.TokenCount); err != nil {
			return err
		}
		at = at.Add(time.Duration(1+rng.Intn(20)) * time.Minute)
	}
	if solved {
		if err := createSubmission(db, &problem, at, true, ch.TokenCount); err != nil {
			return err
		}
	}
	return nil
}

func createSubmission(db *gorm.DB, problem *models.Problem, at time.Time, correct bool, tokenCount int) error {
	sub := models.Submission{
		ID:        uuid.NewString(),
		ProblemID: problem.ID,
		UserID:    uuid.NewString(),
		Timestamp: at,
		Status:    models.SubmissionFailed,
	}
	if correct {
		sub.Status = models.SubmissionPassed
	}
	if err := db.Create(&sub).Error; err != nil {
		return err
	}

	percent := 100 / tokenCount
	for i := 0; i < tokenCount; i++ {
		tok := models.TokenResult{
			ID:           uuid.NewString(),
			SubmissionID: sub.ID,
			Index:        i,
			Status:       models.TokenIncorrect,
			Value:        fmt.Sprintf("guess-%d", i),
		}
		if correct {
			tok.Status = models.TokenCorrect
			tok.Percent = percent
		}
		if err := db.Create(&tok).Error; err != nil {
			return err
		}
	}
	return nil
}

// initPostgres initializes PostgreSQL connection
func initPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
