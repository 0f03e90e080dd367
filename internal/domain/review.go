package domain

// Review is a user's rating of a place. One review per (user, place).
type Review struct {
	Meta
	Text    string
	Rating  int
	UserID  string
	PlaceID string
}

func NewReview(text string, rating int, userID, placeID string) (*Review, error) {
	if err := ValidateReviewText(text); err != nil {
		return nil, err
	}
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	if err := validateID("place_id", placeID); err != nil {
		return nil, err
	}
	return &Review{
		Text:    text,
		Rating:  rating,
		UserID:  userID,
		PlaceID: placeID,
	}, nil
}

func (r *Review) Matches(attr string, value any) (bool, error) {
	switch attr {
	case "id":
		return matchString(value, r.ID, false), nil
	case "user_id":
		return matchString(value, r.UserID, false), nil
	case "place_id":
		return matchString(value, r.PlaceID, false), nil
	default:
		return false, unknownAttribute("review", attr)
	}
}

func (r *Review) Clone() *Review {
	c := *r
	return &c
}

// ReviewPatch lists the mutable review fields; author and place are fixed.
type ReviewPatch struct {
	Text   *string
	Rating *int
}

func (p ReviewPatch) Validate() error {
	if p.Text != nil {
		if err := ValidateReviewText(*p.Text); err != nil {
			return err
		}
	}
	if p.Rating != nil {
		if err := ValidateRating(*p.Rating); err != nil {
			return err
		}
	}
	return nil
}

func (p ReviewPatch) Apply(r *Review) {
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
}
