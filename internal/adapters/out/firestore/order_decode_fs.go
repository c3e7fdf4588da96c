package firestore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	billingdom "firstpick/internal/domain/billing"
	orderdom "firstpick/internal/domain/order"
	productdom "firstpick/internal/domain/product"
)

var errOrderDecode = errors.New("order_repository_fs: decode")

// Prices are written as numbers so documents stay readable by the
// storefront client; they are decoded back through ParsePrice.
// Timestamps are left zero on write and filled in by the server.

type orderDoc struct {
	OrderID        string             `firestore:"orderId"`
	UserID         string             `firestore:"userId"`
	BillingDetails billingdom.Details `firestore:"billingDetails"`
	Items          []orderItemDoc     `firestore:"items"`
	TotalAmount    float64            `firestore:"totalAmount"`
	Status         string             `firestore:"status"`
	CreatedAt      time.Time          `firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time          `firestore:"updatedAt,serverTimestamp"`
}

type orderItemDoc struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	Price     float64 `firestore:"price"`
	Quantity  int     `firestore:"quantity"`
}

func orderToDoc(o orderdom.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
		})
	}
	return orderDoc{
		OrderID:        o.OrderNumber,
		UserID:         o.UserID,
		BillingDetails: o.Billing,
		Items:          items,
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		Status:         string(o.Status),
	}
}

func docToOrder(snap *firestore.DocumentSnapshot) (orderdom.Order, error) {
	raw := snap.Data()
	if raw == nil {
		return orderdom.Order{}, fmt.Errorf("%w: %s: empty document", errOrderDecode, snap.Ref.ID)
	}

	o := orderdom.Order{
		ID:          snap.Ref.ID,
		OrderNumber: asString(raw["orderId"]),
		UserID:      asString(raw["userId"]),
		Status:      orderdom.Status(strings.ToLower(asString(raw["status"]))),
		CreatedAt:   firstTime(raw, "createdAt"),
		UpdatedAt:   firstTime(raw, "updatedAt", "createdAt"),
	}
	if o.Status == "" {
		o.Status = orderdom.StatusPending
	}

	if bm, ok := raw["billingDetails"].(map[string]any); ok {
		o.Billing = billingdom.Details{
			FullName:    asString(bm["fullName"]),
			PhoneNumber: asString(bm["phoneNumber"]),
			Email:       asString(bm["email"]),
			Address:     asString(bm["address"]),
			Landmark:    asString(bm["landmark"]),
			PostalCode:  asString(bm["postalCode"]),
		}
	}

	list, _ := raw["items"].([]any)
	o.Items = make([]orderdom.Item, 0, len(list))
	for _, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		price, err := productdom.ParsePrice(m["price"])
		if err != nil {
			return orderdom.Order{}, fmt.Errorf("%w: %s: item price: %v", errOrderDecode, snap.Ref.ID, err)
		}
		o.Items = append(o.Items, orderdom.Item{
			ProductID: firstString(m, "productId", "id"),
			Name:      asString(m["name"]),
			Price:     price,
			Quantity:  asInt(m["quantity"]),
		})
	}

	if t, err := productdom.ParsePrice(raw["totalAmount"]); err == nil {
		o.TotalAmount = t
	} else {
		o.TotalAmount = orderdom.ComputeTotal(o.Items)
	}
	return o, nil
}
