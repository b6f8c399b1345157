package service

import "github.com/electometer/smart-meter/internal/domain"

// FirstSeedMeter marks a seeded database.
const FirstSeedMeter = "MTR-1001"

var seedMeters = []domain.Meter{
	// Zone A: residential
	{MeterID: "MTR-1001", OwnerName: "Rajesh Kumar", Address: "123 MG Road, Andheri East, Mumbai - 400069", Area: "Zone A"},
	{MeterID: "MTR-1002", OwnerName: "Priya Sharma", Address: "456 SV Road, Andheri West, Mumbai - 400058", Area: "Zone A"},
	{MeterID: "MTR-1003", OwnerName: "Amit Patel", Address: "789 Linking Road, Andheri, Mumbai - 400053", Area: "Zone A"},
	{MeterID: "MTR-1004", OwnerName: "Sneha Deshmukh", Address: "12 Veera Desai Road, Andheri, Mumbai - 400053", Area: "Zone A"},
	{MeterID: "MTR-1005", OwnerName: "Vikram Singh", Address: "34 Yari Road, Andheri West, Mumbai - 400061", Area: "Zone A"},
	{MeterID: "MTR-1006", OwnerName: "Meera Iyer", Address: "56 JP Road, Andheri West, Mumbai - 400058", Area: "Zone A"},
	{MeterID: "MTR-1007", OwnerName: "Arjun Kapoor", Address: "78 New Link Road, Andheri, Mumbai - 400053", Area: "Zone A"},
	{MeterID: "MTR-1008", OwnerName: "Kavita Reddy", Address: "90 Lokhandwala, Andheri West, Mumbai - 400053", Area: "Zone A"},
	{MeterID: "MTR-1009", OwnerName: "Sanjay Gupta", Address: "11 Seven Bungalows, Andheri West, Mumbai - 400061", Area: "Zone A"},
	{MeterID: "MTR-1010", OwnerName: "Pooja Malhotra", Address: "22 DN Nagar, Andheri West, Mumbai - 400058", Area: "Zone A"},

	// Zone B: commercial
	{MeterID: "MTR-1011", OwnerName: "Tech Solutions Pvt Ltd", Address: "12 BKC, G Block, Mumbai - 400051", Area: "Zone B"},
	{MeterID: "MTR-1012", OwnerName: "Infosys Technologies", Address: "34 BKC, C Block, Mumbai - 400051", Area: "Zone B"},
	{MeterID: "MTR-1013", OwnerName: "ICICI Bank Corporate", Address: "56 BKC, E Block, Mumbai - 400051", Area: "Zone B"},
	{MeterID: "MTR-1014", OwnerName: "Reliance Industries Office", Address: "78 BKC, A Block, Mumbai - 400051", Area: "Zone B"},
	{MeterID: "MTR-1015", OwnerName: "Green Cafe & Restaurant", Address: "90 Lower Parel, Mumbai - 400013", Area: "Zone B"},
	{MeterID: "MTR-1016", OwnerName: "Style Fashion Store", Address: "11 Colaba Causeway, Mumbai - 400005", Area: "Zone B"},
	{MeterID: "MTR-1017", OwnerName: "FitZone Gym", Address: "22 Worli Sea Face, Mumbai - 400018", Area: "Zone B"},
	{MeterID: "MTR-1018", OwnerName: "Mumbai Hotel & Suites", Address: "33 Nariman Point, Mumbai - 400021", Area: "Zone B"},
	{MeterID: "MTR-1019", OwnerName: "StarBucks Coffee", Address: "44 Fort, Mumbai - 400001", Area: "Zone B"},
	{MeterID: "MTR-1020", OwnerName: "PVR Cinemas", Address: "55 Phoenix Mall, Lower Parel, Mumbai - 400013", Area: "Zone B"},

	// Zone C: industrial
	{MeterID: "MTR-1021", OwnerName: "ABC Manufacturing Ltd", Address: "Plot 45, MIDC Andheri, Mumbai - 400093", Area: "Zone C"},
	{MeterID: "MTR-1022", OwnerName: "Precision Tools Co.", Address: "Plot 67, Kurla Industrial, Mumbai - 400070", Area: "Zone C"},
	{MeterID: "MTR-1023", OwnerName: "Metro Textiles", Address: "Plot 89, Chandivali, Mumbai - 400072", Area: "Zone C"},
	{MeterID: "MTR-1024", OwnerName: "Steel Industries Ltd", Address: "Plot 12, MIDC Andheri, Mumbai - 400093", Area: "Zone C"},
	{MeterID: "MTR-1025", OwnerName: "Pharma Labs India", Address: "Plot 34, MIDC Andheri, Mumbai - 400093", Area: "Zone C"},
	{MeterID: "MTR-1026", OwnerName: "Auto Parts Manufacturing", Address: "Plot 56, Kurla Industrial, Mumbai - 400070", Area: "Zone C"},
	{MeterID: "MTR-1027", OwnerName: "Chemical Solutions Pvt Ltd", Address: "Plot 78, MIDC Andheri, Mumbai - 400093", Area: "Zone C"},
	{MeterID: "MTR-1028", OwnerName: "Packaging Industries", Address: "Plot 90, Chandivali, Mumbai - 400072", Area: "Zone C"},
	{MeterID: "MTR-1029", OwnerName: "Electronics Assembly Unit", Address: "Plot 23, MIDC Andheri, Mumbai - 400093", Area: "Zone C"},
	{MeterID: "MTR-1030", OwnerName: "Food Processing Plant", Address: "Plot 45, Kurla Industrial, Mumbai - 400070", Area: "Zone C"},

	// Zone D: mixed use
	{MeterID: "MTR-1031", OwnerName: "Sunita Desai", Address: "23 Hill Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1032", OwnerName: "Rahul Nair", Address: "45 Linking Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1033", OwnerName: "Smart Mart Supermarket", Address: "67 Turner Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1034", OwnerName: "Dr. Mehta Clinic", Address: "89 Perry Cross Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1035", OwnerName: "Neha Chopra", Address: "12 Chapel Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1036", OwnerName: "Karan Johar Residence", Address: "34 Union Park, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1037", OwnerName: "Bandra Cafe Lounge", Address: "56 Waterfield Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1038", OwnerName: "The Bookstore", Address: "78 Pali Hill, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1039", OwnerName: "Yoga Studio Wellness", Address: "90 Carter Road, Bandra West, Mumbai - 400050", Area: "Zone D"},
	{MeterID: "MTR-1040", OwnerName: "Dental Care Clinic", Address: "13 St Andrews Road, Bandra West, Mumbai - 400050", Area: "Zone D"},

	// Zone E: high-rise
	{MeterID: "MTR-1041", OwnerName: "Skyline Towers - Wing A", Address: "Plot 1, Goregaon East, Mumbai - 400063", Area: "Zone E"},
	{MeterID: "MTR-1042", OwnerName: "Skyline Towers - Wing B", Address: "Plot 1, Goregaon East, Mumbai - 400063", Area: "Zone E"},
	{MeterID: "MTR-1043", OwnerName: "Ocean View Apartments", Address: "Plot 2, Versova, Mumbai - 400061", Area: "Zone E"},
	{MeterID: "MTR-1044", OwnerName: "Metro Heights Complex", Address: "Plot 3, Goregaon West, Mumbai - 400062", Area: "Zone E"},
	{MeterID: "MTR-1045", OwnerName: "Royal Residency - Tower 1", Address: "Plot 4, Goregaon East, Mumbai - 400063", Area: "Zone E"},
	{MeterID: "MTR-1046", OwnerName: "Royal Residency - Tower 2", Address: "Plot 4, Goregaon East, Mumbai - 400063", Area: "Zone E"},
	{MeterID: "MTR-1047", OwnerName: "Green Park Society", Address: "Plot 5, Goregaon West, Mumbai - 400062", Area: "Zone E"},
	{MeterID: "MTR-1048", OwnerName: "Sunrise Apartments", Address: "Plot 6, Malad West, Mumbai - 400064", Area: "Zone E"},
	{MeterID: "MTR-1049", OwnerName: "Elite Towers", Address: "Plot 7, Goregaon East, Mumbai - 400063", Area: "Zone E"},
	{MeterID: "MTR-1050", OwnerName: "Paradise Residency", Address: "Plot 8, Versova, Mumbai - 400061", Area: "Zone E"},
}

// DemoMeters returns a copy of the demo meter registry.
func DemoMeters() []domain.Meter {
	return append([]domain.Meter(nil), seedMeters...)
}
