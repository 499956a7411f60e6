package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/database"
	"github.com/stemsi/exstem-insights/internal/logger"
	"github.com/stemsi/exstem-insights/internal/model"
	"github.com/stemsi/exstem-insights/internal/repository"
	"github.com/stemsi/exstem-insights/internal/worker"
)

var names = []string{
	"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
	"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
	"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
	"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
	"Rafi Ahmad", "Siska Saraswati", "Toni Setiawan", "Umi Kalsum", "Vina Panduwinata",
	"Wahyu Hidayat", "Xena Maharani", "Yudi Pratama", "Zaki Anwar", "Alifia Zahra",
}

// referenceStudents is the five-student data set used throughout the API docs.
func referenceStudents() []model.Student {
	return []model.Student{
		model.NewStudent("1", 10, model.NewExam(model.ExamTypeEnglish, 181)),
		model.NewStudent("2", 11, model.NewExam(model.ExamTypeEnglish, 182), model.NewExam(model.ExamTypeMath, 191)),
		model.NewStudent("3", 11, model.NewExam(model.ExamTypeEnglish, 183), model.NewExam(model.ExamTypeMath, 190)),
		model.NewStudent("4", 11),
		model.NewStudent("5", 12, model.NewExam(model.ExamTypeEnglish, 183), model.NewExam(model.ExamTypeMath, 195)),
	}
}

// generatedStudents builds n students with zero to three random exam results.
func generatedStudents(n int, rng *rand.Rand) []model.Student {
	students := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %d", names[i%len(names)], i+1)
		rating := float64(rng.IntN(41)+60) / 10

		exams := make([]model.Exam, rng.IntN(4))
		for j := range exams {
			examType := model.ExamTypes[rng.IntN(len(model.ExamTypes))]
			exams[j] = model.NewExam(examType, float64(rng.IntN(61)+140))
		}
		students = append(students, model.NewStudent(name, rating, exams...))
	}
	return students
}

func main() {
	var (
		count int
		reset bool
		seed  uint64
	)
	flag.IntVar(&count, "n", 0, "Generate n random students instead of the reference set")
	flag.BoolVar(&reset, "reset", false, "Delete all students before seeding")
	flag.Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "Random seed used with -n")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)

	if reset {
		if err := studentRepo.DeleteAll(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete students")
		}
		fmt.Println("Existing students deleted.")
	}

	students := referenceStudents()
	if count > 0 {
		students = generatedStudents(count, rand.New(rand.NewPCG(seed, seed)))
	}

	fmt.Printf("=== Seeding %d Students ===\n", len(students))

	successCount := 0
	for i, student := range students {
		if _, err := studentRepo.Create(ctx, student); err != nil {
			fmt.Printf("Error creating student %s: %v\n", student.Name, err)
			continue
		}
		successCount++
		if (i+1)%100 == 0 {
			fmt.Printf("Created %d students...\n", i+1)
		}
	}

	total, err := studentRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count students")
	}
	fmt.Printf("\nSeed completed! Added %d/%d students, %d stored in total.\n", successCount, len(students), total)

	if !cfg.SnapshotCacheEnabled {
		return
	}
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running servers will pick up changes on their next refresh")
		return
	}
	defer rdb.Close()

	if err := worker.NotifyStudentsChanged(ctx, rdb, "seed"); err != nil {
		log.Warn().Err(err).Msg("Failed to notify snapshot workers")
	}
}
