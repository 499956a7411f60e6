package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/database"
	"github.com/stemsi/exstem-insights/internal/logger"
	"github.com/stemsi/exstem-insights/internal/model"
	"github.com/stemsi/exstem-insights/internal/repository"
	"github.com/stemsi/exstem-insights/internal/service"
)

func main() {
	var (
		average string
		top     string
		limit   int
	)
	flag.StringVar(&average, "average", "", "Also print the average score of this exam type")
	flag.StringVar(&top, "top", "", "Print the best students of this exam type instead of reports")
	flag.IntVar(&limit, "k", 3, "Number of students printed with -top")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentService := service.NewStudentService(repository.NewStudentRepository(pool), log)

	if top != "" {
		examType := mustExamType(top)
		students, err := studentService.FindTopScored(ctx, limit, examType)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to rank students")
		}
		for i, s := range students {
			score, _ := s.FirstScore(examType)
			fmt.Printf("%d. %s %.2f\n", i+1, s.Name, score)
		}
		return
	}

	reports, err := studentService.GetAllReports(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build reports")
	}
	for _, r := range reports {
		fmt.Println(r)
	}

	if average != "" {
		examType := mustExamType(average)
		avg, err := studentService.FindAverageScore(ctx, examType)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to compute average")
		}
		fmt.Printf("\n%s average: %.2f\n", examType, avg)
	}
}

func mustExamType(raw string) model.ExamType {
	t, err := model.ParseExamType(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%q: %v (known: %v)\n", raw, err, model.ExamTypes)
		os.Exit(2)
	}
	return t
}
