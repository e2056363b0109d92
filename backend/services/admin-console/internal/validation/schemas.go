package validation

// Entity schemas used by the console services.
var (
	StationSchema = Schema{
		{Name: "name", Rule: Rule{Required: true, MinLength: 3, MaxLength: 100}},
		{Name: "location", Rule: Rule{Required: true, MinLength: 3, MaxLength: 200}},
		{Name: "type", Rule: Rule{Required: true, OneOf: []string{"AC", "DC"}}},
		{Name: "availableSlots", Rule: Rule{Required: true, Numeric: true, Min: Bound(0), Max: Bound(50)}},
	}

	BookingSchema = Schema{
		{Name: "stationId", Rule: Rule{Required: true, MinLength: 1}},
		{Name: "reservationTime", Rule: Rule{Required: true}},
		{Name: "ownerNIC", Rule: Rule{Required: true, MinLength: 1}},
	}

	UserSchema = Schema{
		{Name: "username", Rule: Rule{Required: true, MinLength: 3, MaxLength: 50}},
		{Name: "email", Rule: Rule{Required: true, Email: true}},
		{Name: "phone", Rule: Rule{Required: true, MinLength: 10, MaxLength: 15}},
		{Name: "nic", Rule: Rule{Required: true, MinLength: 10, MaxLength: 12}},
		{Name: "role", Rule: Rule{Required: true, OneOf: []string{"Customer", "Backoffice"}}},
	}

	RegisterSchema = append(UserSchema[:len(UserSchema):len(UserSchema)],
		Field{Name: "password", Rule: Rule{Required: true}},
	)

	LoginSchema = Schema{
		{Name: "email", Rule: Rule{Required: true, Email: true}},
		{Name: "password", Rule: Rule{Required: true}},
	}
)
