package ticketcard

// Name is the gallery label of a variant.
func Name(v Variant) string {
	switch v {
	case VariantEvent:
		return "Standard Event"
	case VariantMusic:
		return "Music Concert"
	case VariantConference:
		return "Business Conference"
	case VariantSports:
		return "Sports Event"
	case VariantFood:
		return "Fine Dining"
	case VariantTheater:
		return "Theater Show"
	case VariantWedding:
		return "Wedding"
	}
	return string(v)
}

// Features lists the design points shown under the gallery.
func Features(v Variant) []string {
	switch v {
	case VariantEvent:
		return []string{"Bold yellow header", "Seat information block", "Printable layout", "Scannable ticket code"}
	case VariantMusic:
		return []string{"Purple gradient theme", "Artist prominence", "Genre classification", "Doors vs show time"}
	case VariantConference:
		return []string{"Professional dark theme", "Company & role details", "Networking access badge", "Clean corporate layout"}
	case VariantSports:
		return []string{"Orange/red energy theme", "Prominent seat details", "Team matchup focus", "Clear section layout"}
	case VariantFood:
		return []string{"Warm amber theme", "Chef & course count", "Dietary preferences", "Elegant typography"}
	case VariantTheater:
		return []string{"Indigo/purple arts theme", "Traditional seat layout", "Show type & act info", "Curtain time emphasis"}
	case VariantWedding:
		return []string{"Romantic rose theme", "Couple names prominence", "Ceremony & reception times", "Dress code information"}
	}
	return nil
}

// Sample returns the showcase data for a variant.
func Sample(v Variant) Data {
	switch v {
	case VariantEvent:
		return Data{
			EventTitle: "Summer Music Festival 2024", EventDate: "July 15, 2024", EventTime: "6:00 PM",
			Venue: "Central Park, New York", TicketType: "VIP", TicketID: "EVT-2024-VIP-001234",
			HolderName: "John Doe", SeatInfo: "Section A, Row 5, Seat 12", Price: 150,
		}
	case VariantConference:
		return Data{
			EventTitle: "Tech Innovation Summit 2024", Company: "TechCorp Inc.", Role: "Software Engineer",
			EventDate: "September 20, 2024", EventTime: "9:00 AM", Venue: "Convention Center",
			TicketType: "Professional", TicketID: "CONF-2024-001234", HolderName: "Jane Smith",
			NetworkingAccess: true, Price: 299, Barcode: "CONF2024001234PRO",
		}
	case VariantSports:
		return Data{
			EventTitle: "Championship Finals", Teams: "Lakers vs Warriors", EventDate: "June 15, 2024",
			EventTime: "7:30 PM", Venue: "Crypto.com Arena", Section: "Section 101", Row: "Row 15",
			Seat: "Seat 8", TicketType: "Lower Bowl", TicketID: "SPT-2024-001234",
			HolderName: "Mike Johnson", Price: 250, Barcode: "SPT2024001234LB",
		}
	case VariantFood:
		return Data{
			EventTitle: "Chef's Table Experience", ChefName: "Chef Marcus Williams", CourseCount: 7,
			EventDate: "August 12, 2024", EventTime: "7:00 PM", Venue: "Le Bernardin",
			TicketType: "Tasting Menu", TicketID: "FOOD-2024-001234", HolderName: "Sarah Chen",
			DietaryInfo: "Vegetarian", Price: 185, Barcode: "FOOD2024001234TM",
		}
	case VariantTheater:
		return Data{
			EventTitle: "Hamilton", ShowType: "Musical", Act: "Evening Performance",
			EventDate: "October 5, 2024", EventTime: "8:00 PM", Venue: "Richard Rodgers Theatre",
			Section: "Orchestra", Row: "H", Seat: "15", TicketType: "Premium",
			TicketID: "THT-2024-001234", HolderName: "Emma Wilson", Price: 175, Barcode: "THT2024001234PR",
		}
	case VariantWedding:
		return Data{
			EventTitle: "Wedding Celebration", CoupleNames: "Sarah & Michael", Ceremony: "4:00 PM",
			Reception: "6:00 PM", EventDate: "June 20, 2024", Venue: "Garden Estate",
			DressCode: "Cocktail Attire", TicketType: "Guest", TicketID: "WED-2024-001234",
			HolderName: "Alex Thompson", Barcode: "WED2024001234GU",
		}
	default:
		return Data{
			EventTitle: "Summer Music Festival 2024", Artist: "The Electric Waves", Genre: "Electronic",
			EventDate: "July 15, 2024", EventTime: "8:00 PM", Doors: "7:00 PM",
			Venue: "Madison Square Garden", TicketType: "VIP", TicketID: "MUS-2024-001234",
			HolderName: "John Doe", Price: 150, Barcode: "MUS2024001234VIP",
		}
	}
}
