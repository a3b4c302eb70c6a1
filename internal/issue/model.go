package issue

import "time"

type DeviceType string

const (
	DeviceCoffeeMachine DeviceType = "Coffee Machine"
	DeviceCoffeeGrinder DeviceType = "Coffee Grinder"
	DeviceOther         DeviceType = "Other Equipment"
)

// issueTypes lists the selectable issues per device, in display order.
var issueTypes = map[DeviceType][]string{
	DeviceCoffeeMachine: {"Not Working", "Leaking Water", "Other"},
	DeviceCoffeeGrinder: {"Not Grinding", "Inconsistent Grind", "Other"},
	DeviceOther:         {"Not Working", "Damaged", "Other"},
}

var deviceOrder = []DeviceType{DeviceCoffeeMachine, DeviceCoffeeGrinder, DeviceOther}

// DeviceIssues is one device with its issue types.
type DeviceIssues struct {
	Device DeviceType `json:"device"`
	Issues []string   `json:"issues"`
}

type SubmitInput struct {
	Device      DeviceType `json:"device" validate:"required"`
	IssueType   string     `json:"issueType" validate:"required"`
	Description string     `json:"description" validate:"required,max=2000"`
}

type Report struct {
	ID          string     `json:"id"`
	Device      DeviceType `json:"device"`
	IssueType   string     `json:"issueType"`
	Description string     `json:"description"`
	ReportedBy  string     `json:"reportedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
