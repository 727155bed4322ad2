package orders

const (
	TopicOrderSubmitted   = "order.submitted"
	TopicOrderApproved    = "order.approved"
	TopicOrderDisapproved = "order.disapproved"
)

// Partition key = order display code, supaya event 1 order maintain urutan.
func PartitionKey(id int64) []byte { return []byte(DisplayCode(id)) }
