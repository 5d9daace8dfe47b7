// Package booking stores trial-lesson bookings in a DynamoDB table keyed by
// (date, sk), where sk is "#<email>#<terakoya type>".
package booking

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TerakoyaType string

const (
	HighschoolMiddleTokyo  TerakoyaType = "HIGHSCHOOL_MIDDLE_TOKYO"
	HighschoolMiddleOnline TerakoyaType = "HIGHSCHOOL_MIDDLE_ONLINE"
	MiddleschoolTokyo      TerakoyaType = "MIDDLESCHOOL_TOKYO"
	MiddleschoolOnline     TerakoyaType = "MIDDLESCHOOL_ONLINE"
)

type Place string

const (
	PlaceTBD     Place = "TBD"
	PlaceOnline  Place = "ONLINE"
	PlaceSakura  Place = "SAKURA"
	PlaceKashiwa Place = "KASHIWA"
	PlaceTokyo   Place = "TOKYO"
)

type RemindStatus string

const (
	NotSent RemindStatus = "NOT_SENT"
	Sent    RemindStatus = "SENT"
)

var (
	terakoyaTypes = map[string]struct{}{
		string(HighschoolMiddleTokyo): {}, string(HighschoolMiddleOnline): {},
		string(MiddleschoolTokyo): {}, string(MiddleschoolOnline): {},
	}
	places = map[string]struct{}{
		string(PlaceTBD): {}, string(PlaceOnline): {}, string(PlaceSakura): {},
		string(PlaceKashiwa): {}, string(PlaceTokyo): {},
	}
	remindStatuses = map[string]struct{}{string(NotSent): {}, string(Sent): {}}
)

// Item is one booking row.
type Item struct {
	Date              string       `json:"date" dynamodbav:"date"`
	SK                string       `json:"sk" dynamodbav:"sk"`
	Email             string       `json:"email" dynamodbav:"email"`
	Name              string       `json:"name" dynamodbav:"name"`
	TerakoyaType      TerakoyaType `json:"terakoya_type" dynamodbav:"terakoya_type"`
	Place             Place        `json:"place" dynamodbav:"place"`
	ArrivalTime       string       `json:"arrival_time" dynamodbav:"arrival_time"`
	Grade             string       `json:"grade" dynamodbav:"grade"`
	FirstChoiceSchool string       `json:"first_choice_school" dynamodbav:"first_choice_school"`
	CourseChoice      string       `json:"course_choice" dynamodbav:"course_choice"`
	FutureFree        string       `json:"future_free" dynamodbav:"future_free"`
	LikeThingFree     string       `json:"like_thing_free" dynamodbav:"like_thing_free"`
	HowToKnow         string       `json:"how_to_know" dynamodbav:"how_to_know"`
	Remarks           string       `json:"remarks" dynamodbav:"remarks"`
	IsReminded        RemindStatus `json:"is_reminded" dynamodbav:"is_reminded"`
	CreatedAt         string       `json:"created_at" dynamodbav:"created_at"`
}

// GenerateSK builds the sort key of a booking.
func GenerateSK(email string, t TerakoyaType) string {
	return "#" + email + "#" + string(t)
}

// -------------------- enum decoding --------------------

func decodeEnum(name string, allowed map[string]struct{}, s string) error {
	if _, ok := allowed[s]; !ok {
		return fmt.Errorf("unknown %s %q", name, s)
	}
	return nil
}

func unmarshalEnumAV(name string, allowed map[string]struct{}, av types.AttributeValue) (string, error) {
	var s string
	if err := attributevalue.Unmarshal(av, &s); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return s, decodeEnum(name, allowed, s)
}

func unmarshalEnumJSON(name string, allowed map[string]struct{}, data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return s, decodeEnum(name, allowed, s)
}

func (t *TerakoyaType) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	s, err := unmarshalEnumAV("terakoya type", terakoyaTypes, av)
	if err != nil {
		return err
	}
	*t = TerakoyaType(s)
	return nil
}

func (t *TerakoyaType) UnmarshalJSON(data []byte) error {
	s, err := unmarshalEnumJSON("terakoya type", terakoyaTypes, data)
	if err != nil {
		return err
	}
	*t = TerakoyaType(s)
	return nil
}

func (p *Place) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	s, err := unmarshalEnumAV("place", places, av)
	if err != nil {
		return err
	}
	*p = Place(s)
	return nil
}

func (p *Place) UnmarshalJSON(data []byte) error {
	s, err := unmarshalEnumJSON("place", places, data)
	if err != nil {
		return err
	}
	*p = Place(s)
	return nil
}

func (r *RemindStatus) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	s, err := unmarshalEnumAV("remind status", remindStatuses, av)
	if err != nil {
		return err
	}
	*r = RemindStatus(s)
	return nil
}

func (r *RemindStatus) UnmarshalJSON(data []byte) error {
	s, err := unmarshalEnumJSON("remind status", remindStatuses, data)
	if err != nil {
		return err
	}
	*r = RemindStatus(s)
	return nil
}
