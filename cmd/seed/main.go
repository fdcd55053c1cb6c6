// Command seed fills the configured database with fake users, projects and
// commits.
package main

import (
	"context"
	"flag"
	"log"

	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/database"
	"projecthub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numProjects := flag.Int("projects", 3, "Projects per user")
	numCommits := flag.Int("commits", 10, "Commits per project")
	privateEvery := flag.Int("private-every", 3, "Make every n-th project private (0 for none)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 uses the clock)")
	flag.Parse()

	log.Printf("Target: %d users, %d projects each, %d commits each, clean=%v", *numUsers, *numProjects, *numCommits, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, auth.NewHasher(cfg.BcryptCost))
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx, seed.Options{
		Users:             *numUsers,
		ProjectsPerUser:   *numProjects,
		CommitsPerProject: *numCommits,
		PrivateEvery:      *privateEvery,
		Seed:              *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d projects, %d commits", len(res.Users), len(res.Projects), res.Commits)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
