package orders

// Status is the order-level status. Orders are created confirmed and no
// operation changes it afterwards.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// ItemStatus tracks a line item through the kitchen.
type ItemStatus string

const (
	ItemSentToKitchen  ItemStatus = "sent_to_kitchen"
	ItemInProgress     ItemStatus = "in_progress"
	ItemOutForDelivery ItemStatus = "out_for_delivery"
	ItemDone           ItemStatus = "done"
)

var itemStatuses = map[ItemStatus]bool{
	ItemSentToKitchen:  true,
	ItemInProgress:     true,
	ItemOutForDelivery: true,
	ItemDone:           true,
}

// ItemStatuses lists every valid item status in kitchen order.
var ItemStatuses = []ItemStatus{ItemSentToKitchen, ItemInProgress, ItemOutForDelivery, ItemDone}

// ActiveStatuses are the states shown in the kitchen queue.
var ActiveStatuses = []ItemStatus{ItemSentToKitchen, ItemInProgress, ItemOutForDelivery}

func (s ItemStatus) Valid() bool { return itemStatuses[s] }

func (s ItemStatus) Active() bool { return s.Valid() && s != ItemDone }

// There is no ordering between item statuses: any valid status may replace
// any other, including moving back from done.
