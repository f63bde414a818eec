package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// Topics для Kafka
const (
	TopicSaleEvents = "sales.sale.events"
)

// saleEventMessage — wire-формат доменного события продажи.
type saleEventMessage struct {
	EventType    string            `json:"event_type"`
	SaleID       string            `json:"sale_id"`
	SaleNumber   string            `json:"sale_number"`
	CustomerID   string            `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	BranchID     string            `json:"branch_id"`
	BranchName   string            `json:"branch_name"`
	Status       string            `json:"status"`
	TotalAmount  string            `json:"total_amount"`
	Items        []saleItemMessage `json:"items"`
	ItemID       string            `json:"item_id,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

type saleItemMessage struct {
	ItemID      string `json:"item_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Discount    string `json:"discount"`
	IsCancelled bool   `json:"is_cancelled"`
}

// newSaleEventMessage строит сообщение из доменного события. Денежные поля
// сериализуются строками, чтобы не терять точность на стороне потребителей.
func newSaleEventMessage(event domain.SaleEvent) saleEventMessage {
	items := make([]saleItemMessage, 0, len(event.Sale.Items))
	for _, item := range event.Sale.Items {
		items = append(items, saleItemMessage{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			Discount:    item.Discount.String(),
			IsCancelled: item.IsCancelled,
		})
	}

	return saleEventMessage{
		EventType:    string(event.Type),
		SaleID:       event.Sale.ID,
		SaleNumber:   event.Sale.SaleNumber,
		CustomerID:   event.Sale.CustomerID,
		CustomerName: event.Sale.CustomerName,
		BranchID:     event.Sale.BranchID,
		BranchName:   event.Sale.BranchName,
		Status:       string(event.Sale.Status),
		TotalAmount:  event.Sale.TotalAmount().String(),
		Items:        items,
		ItemID:       event.ItemID,
		Reason:       event.Reason,
		Timestamp:    event.Occurred,
	}
}
