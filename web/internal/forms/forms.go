// Package forms holds the page form schemas. Validation failures never reach
// the network; they render inline, per field.
package forms

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Sign-up passwords need at least one upper and one lower case letter.
	v.RegisterValidation("mixedcase", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.ContainsFunc(s, unicode.IsUpper) &&
			strings.ContainsFunc(s, unicode.IsLower)
	})
	return v
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Next     string // original destination, carried through the redirect
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Name     string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,mixedcase"`
	PhotoURL string `validate:"omitempty,url"`
}

// OrderForm is the place-order form.
type OrderForm struct {
	Quantity    int    `validate:"required,min=1,max=10"`
	UserAddress string `validate:"required,min=10"`
}

// ReviewForm is the write-a-review form.
type ReviewForm struct {
	Rating  int    `validate:"required,min=1,max=5"`
	Comment string `validate:"required,min=10"`
}

// MealForm is the chef's create/edit meal form.
type MealForm struct {
	FoodName              string   `validate:"required,min=3"`
	FoodImage             string   `validate:"omitempty,url"`
	Price                 float64  `validate:"required,gt=0"`
	EstimatedDeliveryTime string   `validate:"required"`
	ChefExperience        string   `validate:"required,min=5"`
	Ingredients           []string `validate:"required,min=1,dive,required"`
	DeliveryArea          string
}

// ProfileForm is the display-profile update form.
type ProfileForm struct {
	DisplayName string `validate:"required,min=3"`
	PhotoURL    string `validate:"omitempty,url"`
}

var fieldMessages = map[string]string{
	"LoginForm.Email":                    "Please enter a valid email address",
	"LoginForm.Password":                 "Password must be at least 6 characters",
	"RegisterForm.Name":                  "Name must be at least 3 characters",
	"RegisterForm.Email":                 "Please enter a valid email address",
	"RegisterForm.Password":              "Password needs 6+ characters with upper and lower case letters",
	"RegisterForm.PhotoURL":              "Photo must be a valid URL",
	"OrderForm.Quantity":                 "Quantity must be between 1 and 10",
	"OrderForm.UserAddress":              "Please enter a valid delivery address",
	"ReviewForm.Rating":                  "Please select a rating",
	"ReviewForm.Comment":                 "Review must be at least 10 characters",
	"MealForm.FoodName":                  "Food name must be at least 3 characters",
	"MealForm.FoodImage":                 "Image must be a valid URL",
	"MealForm.Price":                     "Price must be a positive number",
	"MealForm.EstimatedDeliveryTime":     "Estimated delivery time is required",
	"MealForm.ChefExperience":            "Please describe your experience",
	"MealForm.Ingredients":               "Add at least one ingredient",
	"ProfileForm.DisplayName":            "Name must be at least 3 characters",
	"ProfileForm.PhotoURL":               "Photo must be a valid URL",
}

// Errors maps field names to inline messages.
type Errors map[string]string

// Check validates a form struct and returns per-field messages; nil when the
// form is valid.
func Check(form any) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": "Invalid input"}
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		// Namespace is "LoginForm.Email"; nested slice entries collapse onto
		// the parent field's message.
		key := fe.StructNamespace()
		if i := strings.IndexByte(key, '['); i >= 0 {
			key = key[:i]
		}
		field := key[strings.LastIndexByte(key, '.')+1:]
		if msg, ok := fieldMessages[key]; ok {
			out[field] = msg
		} else {
			out[field] = "Invalid value"
		}
	}
	return out
}
