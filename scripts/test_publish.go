//go:build ignore

// Публикует тестовую анкету в stream:survey:submissions и ждёт, пока воркер архива её подтвердит.
//
//	go run scripts/test_publish.go -redis localhost:6379 -group survey-submission-archivers
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/survey-reachability/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	group := flag.String("group", "survey-submission-archivers", "Consumer group of the archive worker")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	lat, lon := 47.6567, -122.3066
	submission := &domain.Submission{
		ID: uuid.New(),
		Payload: domain.Payload{
			{Name: "lat", Value: fmt.Sprintf("%f", lat)},
			{Name: "lon", Value: fmt.Sprintf("%f", lon)},
			{Name: "trip_purpose", Value: "Groceries"},
			{Name: "near_miss", Value: "Cars turning; Bikes on sidewalk"},
		},
		Lat:       &lat,
		Lon:       &lon,
		Status:    domain.StatusSubmitted,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(domain.NewSubmissionEvent(submission))
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	msgID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamSurveySubmissions,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamSurveySubmissions)
	fmt.Printf("   Message ID: %s\n", msgID)
	fmt.Printf("   Submission ID: %s\n", submission.ID)

	fmt.Printf("\nWaiting for group %q to acknowledge...\n", *group)

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for the archive worker")
			return
		case <-ticker.C:
			groups, err := client.XInfoGroups(ctx, domain.StreamSurveySubmissions).Result()
			if err != nil {
				continue
			}
			for _, g := range groups {
				if g.Name != *group {
					continue
				}
				if g.LastDeliveredID >= msgID && g.Pending == 0 {
					fmt.Printf("Archived (last delivered %s)\n", g.LastDeliveredID)
					return
				}
			}
		}
	}
}
