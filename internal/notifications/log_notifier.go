package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogNotifier is the stand-in provider: it writes the confirmation to the
// process log. Env knobs let tests and local runs simulate a slow or failing
// provider.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendEnrollmentConfirmation(ctx context.Context, in SendEnrollmentConfirmationInput) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	log.Printf("notification.enrollment_confirmation email=%s name=%s course=%q enrollment=%s",
		in.Email, in.UserName, in.CourseTitle, in.EnrollmentID,
	)
	return nil
}
