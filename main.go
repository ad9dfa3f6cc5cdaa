package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"wiki_quiz_client/internal/app"
	"wiki_quiz_client/internal/config"
	"wiki_quiz_client/internal/controller"
	"wiki_quiz_client/internal/util"
	"wiki_quiz_client/pkg/logger"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	generate := flag.String("generate", "", "Wikipedia article URL to build a quiz from")
	force := flag.Bool("force", false, "regenerate even if the backend has a stored quiz")
	showHistory := flag.Bool("history", false, "browse past quizzes")
	quizID := flag.String("quiz", "", "open a stored quiz by id")
	review := flag.Bool("review", false, "show answers instead of taking the quiz")
	submitRemote := flag.Bool("submit-remote", false, "also let the backend grade each attempt")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := app.RunOptions{
		GenerateURL:  *generate,
		Force:        *force,
		History:      *showHistory,
		Review:       *review,
		SubmitRemote: *submitRemote,
	}
	if *quizID != "" {
		id, ok := util.ParseQuizID(*quizID)
		if !ok {
			log.Fatalf("Invalid quiz id %q", *quizID)
		}
		opts.QuizID = id
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer logger.Log.Sync()

	err = application.Run(context.Background(), opts, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, controller.ErrQuit) {
		logger.Log.Sync()
		os.Exit(1)
	}
}
