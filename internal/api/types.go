package api

import "time"

// Role is the backend-assigned user role. Raw role strings from the wire are
// parsed through ParseRole so a typo can never grant access.
type Role string

const (
	RoleUser  Role = "user"
	RoleChef  Role = "chef"
	RoleAdmin Role = "admin"
)

// ParseRole maps a wire string to a Role, falling back to RoleUser for
// anything unknown or empty.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleChef:
		return RoleChef
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// UserStatus is the account standing recorded on the backend user.
type UserStatus string

const (
	StatusActive UserStatus = "active"
	StatusFraud  UserStatus = "fraud"
)

// OrderStatus is the order lifecycle state:
// pending -> accepted -> delivered, or -> cancelled.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// RequestType is the role a user asks to be upgraded to.
type RequestType string

const (
	RequestChef  RequestType = "chef"
	RequestAdmin RequestType = "admin"
)

// RequestStatus is the moderation state of a role-upgrade request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// User is the backend-side user record (the session record), keyed by email.
type User struct {
	ID       string     `json:"_id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	PhotoURL string     `json:"photoURL,omitempty"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
	Address  string     `json:"address,omitempty"`
	ChefID   string     `json:"chefId,omitempty"`
}

// UserInput is the payload for creating a backend user record at sign-up.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// Meal is a chef's listed dish.
type Meal struct {
	ID                    string   `json:"_id"`
	FoodName              string   `json:"foodName"`
	FoodImage             string   `json:"foodImage,omitempty"`
	Price                 float64  `json:"price"`
	Rating                float64  `json:"rating"`
	TotalReviews          int      `json:"totalReviews"`
	Ingredients           []string `json:"ingredients,omitempty"`
	DeliveryArea          string   `json:"deliveryArea,omitempty"`
	EstimatedDeliveryTime string   `json:"estimatedDeliveryTime,omitempty"`
	ChefID                string   `json:"chefId,omitempty"`
	ChefName              string   `json:"chefName,omitempty"`
	ChefExperience        string   `json:"chefExperience,omitempty"`
}

// MealInput is the payload for creating or updating a meal. The backend fills
// in chef identity from the bearer credential.
type MealInput struct {
	FoodName              string   `json:"foodName"`
	FoodImage             string   `json:"foodImage,omitempty"`
	Price                 float64  `json:"price"`
	Ingredients           []string `json:"ingredients"`
	DeliveryArea          string   `json:"deliveryArea,omitempty"`
	EstimatedDeliveryTime string   `json:"estimatedDeliveryTime"`
	ChefExperience        string   `json:"chefExperience,omitempty"`
}

// MealPage is a paginated meal listing.
type MealPage struct {
	Meals      []Meal `json:"meals"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// Order is a placed order as the backend reports it.
type Order struct {
	ID            string      `json:"_id"`
	FoodID        string      `json:"foodId"`
	FoodName      string      `json:"foodName,omitempty"`
	Quantity      int         `json:"quantity"`
	Price         float64     `json:"price"`
	UserEmail     string      `json:"userEmail,omitempty"`
	UserAddress   string      `json:"userAddress"`
	ChefID        string      `json:"chefId,omitempty"`
	OrderStatus   OrderStatus `json:"orderStatus"`
	PaymentStatus string      `json:"paymentStatus,omitempty"`
	OrderTime     time.Time   `json:"orderTime,omitempty"`
}

// OrderInput is the payload for placing an order; the backend fills in
// the ordering user, price, and chef from the meal.
type OrderInput struct {
	FoodID      string `json:"foodId"`
	Quantity    int    `json:"quantity"`
	UserAddress string `json:"userAddress"`
}

// OrderPage is a paginated order listing.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// Review is a meal review.
type Review struct {
	ID            string    `json:"_id"`
	FoodID        string    `json:"foodId"`
	FoodName      string    `json:"foodName,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	ReviewerName  string    `json:"reviewerName,omitempty"`
	ReviewerImage string    `json:"reviewerImage,omitempty"`
	Date          time.Time `json:"date,omitempty"`
}

// ReviewInput is the payload for creating or editing a review; reviewer
// identity and date are backend-filled.
type ReviewInput struct {
	FoodID  string `json:"foodId,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Favorite is a saved meal reference.
type Favorite struct {
	ID        string    `json:"_id"`
	MealID    string    `json:"mealId"`
	MealName  string    `json:"mealName,omitempty"`
	ChefName  string    `json:"chefName,omitempty"`
	Price     float64   `json:"price,omitempty"`
	AddedTime time.Time `json:"addedTime,omitempty"`
}

// RoleRequest is a pending role-upgrade request.
type RoleRequest struct {
	ID            string        `json:"_id"`
	UserName      string        `json:"userName"`
	UserEmail     string        `json:"userEmail"`
	RequestType   RequestType   `json:"requestType"`
	RequestStatus RequestStatus `json:"requestStatus"`
	RequestTime   time.Time     `json:"requestTime"`
}

// Statistics are the platform-wide aggregate counts shown to admins.
type Statistics struct {
	TotalUsers      int     `json:"totalUsers"`
	TotalChefs      int     `json:"totalChefs"`
	TotalMeals      int     `json:"totalMeals"`
	PendingOrders   int     `json:"pendingOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	TotalPayments   float64 `json:"totalPayments"`
}

// CheckoutSession is the payment redirect returned by the backend.
type CheckoutSession struct {
	URL string `json:"url"`
}
