// Command parley-sim runs the interview pipeline end to end against the
// configured backend (the offline stub by default) and prints the generated
// questions, per-answer scores, and the final report. It exists to exercise
// the full pipeline without an API layer in front of it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ahrav/go-parley/internal/application"
	"github.com/ahrav/go-parley/internal/domain"
)

// cannedAnswers simulates a candidate of middling quality: some answers
// carry real experience and technologies, some stay vague.
var cannedAnswers = []string{
	"I built the payments service in go with postgres. For example, we handled idempotency keys for retried charges and added integration tests around the whole flow.",
	"We usually just follow the standard process.",
	"In my previous role we migrated the monolith to microservices on kubernetes. I designed the traffic-shifting plan and we used redis for session state during the cutover.",
	"Testing is important so we write tests.",
	"I implemented the rate limiter myself using a token bucket. We used grpc between services and for example added backpressure when the queue depth grew.",
}

func main() {
	configPath := flag.String("config", "", "path to pipeline config YAML (defaults apply when empty)")
	role := flag.String("role", "Backend Engineer", "role being interviewed for")
	level := flag.String("level", "senior", "candidate seniority")
	skills := flag.String("skills", "Go,PostgreSQL,Kubernetes", "comma-separated skill list")
	questions := flag.Int("questions", 5, "number of questions to generate")
	flag.Parse()

	if err := run(*configPath, *role, *level, strings.Split(*skills, ","), *questions); err != nil {
		fmt.Fprintf(os.Stderr, "parley-sim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, role, level string, skills []string, questions int) error {
	config := application.DefaultPipelineConfig()
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return err
		}
		defer f.Close()
		config, err = application.LoadConfig(f)
		if err != nil {
			return err
		}
	}

	backend, err := application.BuildBackend(config.Backend, nil)
	if err != nil {
		return err
	}
	service, err := application.NewService(backend, config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var history []domain.QAPair
	var previousQuestion, previousAnswer string

	fmt.Printf("Simulated interview: %s %s covering %s\n\n", level, role, strings.Join(skills, ", "))

	for i := 1; i <= questions; i++ {
		resp, err := service.GenerateQuestion(ctx, application.QuestionRequest{
			Role:                role,
			Level:               level,
			Skills:              skills,
			PreviousQuestion:    previousQuestion,
			PreviousAnswer:      previousAnswer,
			ConversationHistory: history,
			QuestionNumber:      i,
			TotalQuestions:      questions,
		})
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}

		answer := cannedAnswers[(i-1)%len(cannedAnswers)]
		fmt.Printf("Q%d (%d attempt(s), accepted=%t", i, resp.Attempts, resp.Accepted)
		if resp.Strategy != "" {
			fmt.Printf(", strategy=%s", resp.Strategy)
		}
		fmt.Printf("): %s\n", resp.Question)
		fmt.Printf("A%d: %s\n\n", i, answer)

		history = append(history, domain.QAPair{Question: resp.Question, Answer: answer})
		previousQuestion = resp.Question
		previousAnswer = answer
	}

	records, err := service.ScoreConversation(ctx, history)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	for _, record := range records {
		fmt.Printf("Score %d: %.2f (relevance %.2f, depth %.2f, clarity %.2f)\n",
			record.Sequence, record.FinalScore,
			record.Dimensions.Relevance, record.Dimensions.Depth, record.Dimensions.Clarity)
	}

	feedback, err := service.OverallFeedback(ctx, application.FeedbackRequest{
		Conversation: records,
		Role:         role,
		Seniority:    level,
		Skills:       skills,
	})
	if err != nil {
		return fmt.Errorf("feedback: %w", err)
	}

	fmt.Printf("\nOverview: %s (average %.2f)\n", feedback.Overview, feedback.AverageScore)
	fmt.Printf("Assessment: %s\n", feedback.Assessment)
	fmt.Println("Strengths:")
	for _, s := range feedback.Strengths {
		fmt.Printf("  - %s\n", s)
	}
	fmt.Println("Weaknesses:")
	for _, w := range feedback.Weaknesses {
		fmt.Printf("  - %s\n", w)
	}
	fmt.Printf("Recommendations: %s\n", feedback.Recommendations)
	return nil
}
