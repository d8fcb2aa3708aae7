package reviews

import "time"

// Review is the item stored in the reviews table.
type Review struct {
	ReviewID  string    `dynamodbav:"review_id" json:"reviewId"` // PK
	ProductID string    `dynamodbav:"product_id" json:"productId"`
	UserID    string    `dynamodbav:"user_id" json:"userId"`
	UserName  string    `dynamodbav:"user_name,omitempty" json:"userName,omitempty"`
	OrderID   string    `dynamodbav:"order_id" json:"orderId"`
	Rating    int       `dynamodbav:"rating" json:"rating"` // 1..5
	Comment   string    `dynamodbav:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}
