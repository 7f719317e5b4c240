package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/staffhubio/staffhub/db"
)

// NotifyService pushes shift notifications to employee devices over FCM.
// Notifications are best effort: a missing credentials file or token never
// fails the scheduling operation that triggered the push.
type NotifyService struct {
	PG     *sql.DB
	client *messaging.Client
}

func NewNotifyService(pg *sql.DB, credentialsFile string) (*NotifyService, error) {
	service := &NotifyService{PG: pg}

	if credentialsFile == "" {
		log.Println("Notify service: no FCM credentials configured, push disabled")
		return service, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("Firebase app not initialized: %v, push disabled", err)
		return service, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("Firebase messaging client not initialized: %v, push disabled", err)
		return service, nil
	}

	service.client = client
	log.Println("Notify service: FCM messaging initialized")
	return service, nil
}

var notificationTitles = map[string]string{
	"shift_scheduled": "New shift scheduled",
	"shift_updated":   "Shift updated",
	"shift_cancelled": "Shift cancelled",
	"shift_reminder":  "Upcoming shift",
}

// SendShiftNotification pushes one shift event to the assigned employee.
func (s *NotifyService) SendShiftNotification(assignment *db.ShiftAssignment, event string) error {
	if s.client == nil {
		return nil
	}

	var fcmToken string
	err := s.PG.QueryRow(
		"SELECT fcm_token FROM employees WHERE id = $1 AND fcm_token IS NOT NULL AND fcm_token != ''",
		assignment.EmployeeID,
	).Scan(&fcmToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("error fetching employee FCM token: %w", err)
	}

	title, ok := notificationTitles[event]
	if !ok {
		title = "Shift notification"
	}

	message := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  fmt.Sprintf("%s %s-%s", assignment.Date, assignment.ShiftStart, assignment.ShiftEnd),
		},
		Data: map[string]string{
			"type":        event,
			"shift_id":    assignment.ID,
			"date":        assignment.Date,
			"shift_start": assignment.ShiftStart,
			"shift_end":   assignment.ShiftEnd,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "shift_updates",
			},
		},
	}

	if _, err := s.client.Send(context.Background(), message); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

// SendShiftNotificationAsync fires the push without blocking the caller.
func (s *NotifyService) SendShiftNotificationAsync(assignment *db.ShiftAssignment, event string) {
	if s.client == nil {
		return
	}
	go func() {
		if err := s.SendShiftNotification(assignment, event); err != nil {
			log.Printf("Failed to notify employee %s about %s: %v", assignment.EmployeeID, event, err)
		}
	}()
}
