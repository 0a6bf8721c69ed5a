package roster

func driver(name string, aliases ...string) Entry {
	return Entry{Canonical: name, Aliases: aliases}
}

func team(name string, aliases ...string) Entry {
	return Entry{Canonical: name, Aliases: aliases}
}

// Season2025 is the 2025 grid.
func Season2025() Roster {
	return Roster{
		Season: 2025,
		Drivers: []Entry{
			driver("Max Verstappen", "VER", "Verstappen"),
			driver("Yuki Tsunoda", "TSU"),
			driver("Lando Norris", "NOR"),
			driver("Oscar Piastri", "PIA"),
			driver("Charles Leclerc", "LEC"),
			driver("Lewis Hamilton", "HAM"),
			driver("George Russell", "RUS"),
			driver("Andrea Kimi Antonelli", "ANT", "Kimi Antonelli"),
			driver("Fernando Alonso", "ALO"),
			driver("Lance Stroll", "STR"),
			driver("Pierre Gasly", "GAS"),
			driver("Franco Colapinto", "COL"),
			driver("Alexander Albon", "ALB", "Alex Albon"),
			driver("Carlos Sainz", "SAI", "Carlos Sainz Jr"),
			driver("Isack Hadjar", "HAD"),
			driver("Liam Lawson", "LAW"),
			driver("Nico Hülkenberg", "HUL"),
			driver("Gabriel Bortoleto", "BOR"),
			driver("Esteban Ocon", "OCO"),
			driver("Oliver Bearman", "BEA", "Ollie Bearman"),
		},
		Teams: []Entry{
			team("Red Bull Racing", "Red Bull", "Oracle Red Bull Racing", "RBR"),
			team("McLaren", "McLaren F1 Team"),
			team("Ferrari", "Scuderia Ferrari"),
			team("Mercedes", "Mercedes-AMG Petronas", "Mercedes AMG"),
			team("Aston Martin", "Aston Martin Aramco"),
			team("Alpine", "BWT Alpine"),
			team("Williams", "Williams Racing"),
			team("Racing Bulls", "RB", "Visa Cash App RB", "VCARB"),
			team("Kick Sauber", "Sauber", "Stake F1 Team"),
			team("Haas", "Haas F1 Team", "MoneyGram Haas"),
		},
	}
}

// Season2026 is the 2026 grid. Sauber became Audi and Cadillac joined.
func Season2026() Roster {
	return Roster{
		Season: 2026,
		Drivers: []Entry{
			driver("Max Verstappen", "VER"),
			driver("Isack Hadjar", "HAD"),
			driver("Lando Norris", "NOR"),
			driver("Oscar Piastri", "PIA"),
			driver("Charles Leclerc", "LEC"),
			driver("Lewis Hamilton", "HAM"),
			driver("George Russell", "RUS"),
			driver("Andrea Kimi Antonelli", "ANT", "Kimi Antonelli"),
			driver("Fernando Alonso", "ALO"),
			driver("Lance Stroll", "STR"),
			driver("Pierre Gasly", "GAS"),
			driver("Franco Colapinto", "COL"),
			driver("Alexander Albon", "ALB", "Alex Albon"),
			driver("Carlos Sainz", "SAI", "Carlos Sainz Jr"),
			driver("Liam Lawson", "LAW"),
			driver("Arvid Lindblad", "LIN"),
			driver("Nico Hülkenberg", "HUL"),
			driver("Gabriel Bortoleto", "BOR"),
			driver("Esteban Ocon", "OCO"),
			driver("Oliver Bearman", "BEA", "Ollie Bearman"),
			driver("Sergio Pérez", "PER", "Checo", "Checo Perez"),
			driver("Valtteri Bottas", "BOT"),
		},
		Teams: []Entry{
			team("Red Bull Racing", "Red Bull", "Oracle Red Bull Racing", "RBR"),
			team("McLaren", "McLaren F1 Team"),
			team("Ferrari", "Scuderia Ferrari"),
			team("Mercedes", "Mercedes-AMG Petronas", "Mercedes AMG"),
			team("Aston Martin", "Aston Martin Aramco"),
			team("Alpine", "BWT Alpine"),
			team("Williams", "Williams Racing"),
			team("Racing Bulls", "RB", "Visa Cash App RB", "VCARB"),
			team("Audi", "Sauber", "Kick Sauber", "Audi F1 Team"),
			team("Haas", "Haas F1 Team", "TGR Haas"),
			team("Cadillac", "Cadillac F1 Team"),
		},
	}
}

// DefaultCatalog covers every season the engine knows about.
func DefaultCatalog() *Catalog {
	return NewCatalog(Season2025(), Season2026())
}
