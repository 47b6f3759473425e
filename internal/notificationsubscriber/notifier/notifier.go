package notifier

import (
	"fmt"
	"time"

	"dinehub/pkg/logger"
	"dinehub/pkg/models"
)

type Notifier struct {
	logger *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{logger: log}
}

func (n *Notifier) DisplayNotification(statusUpdate *models.StatusUpdateMessage) {
	fmt.Printf("Order %s: status changed from '%s' to '%s' by %s at %s\n",
		statusUpdate.OrderNumber,
		statusUpdate.OldStatus,
		statusUpdate.NewStatus,
		statusUpdate.ChangedBy,
		statusUpdate.Timestamp.Format(time.RFC3339),
	)
}
