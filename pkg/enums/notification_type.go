package enums

import "fmt"

// NotificationType labels entries in the per-user notification feed.
type NotificationType string

const (
	NotificationTypeNewPredictions       NotificationType = "new_predictions"
	NotificationTypeSubscriptionApproved NotificationType = "subscription_approved"
	NotificationTypeSubscriptionExpiring NotificationType = "subscription_expiring"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewPredictions,
	NotificationTypeSubscriptionApproved,
	NotificationTypeSubscriptionExpiring,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
