package registry

// Defaults returns the production mapping tables. Load merges these with
// any local overrides; tests construct their own fixtures via New.
func Defaults() Tables {
	return Tables{
		EmailToCustomer: map[string]string{
			// Elevance-Carelon
			"kelli-ann.bailey@carelon.com": "Elevance-Carelon",

			// Headway
			"edna.villareal@findheadway.com":   "Headway",
			"luis.valdez@findheadway.com":      "Headway",
			"katie.cassidy@findheadway.com":    "Headway",
			"stephani.vasquez@findheadway.com": "Headway",
			"gavin.green@findheadway.com":      "Headway",
			"valorie.reyes@findheadway.com":    "Headway",
			"amy.huh@findheadway.com":          "Headway",

			// SCAN
			"c.smith@scanhealthplan.com":   "SCAN",
			"b.chan@scanhealthplan.com":    "SCAN",
			"li.lopez@scanhealthplan.com":  "SCAN",
			"a.liu@scanhealthplan.com":     "SCAN",
			"evo@scanhealthplan.com":       "SCAN",
			"a.vuc@scanhealthplan.com":     "SCAN",
			"mo.davila@scanhealthplan.com": "SCAN",

			// University of Utah Health Plan
			"aimee.kulp@hsc.utah.edu": "UUHP (University of Utah)",
		},
		NameToCustomer: map[string]string{
			"cindy bergley":           "FCHN",
			"abby fuller":             "FCHN",
			"tanya ramirez":           "FCHN",
			"steffany taylor":         "FCHN",
			"zara aghajanyan":         "Headway",
			"carrie black":            "SCAN",
			"charlene frail-mcgeever": "UUHP (University of Utah)",
			"charlene frail mcgeever": "UUHP (University of Utah)",
		},
		DomainToCustomer: map[string]string{
			"carelon.com":        "Elevance-Carelon",
			"findheadway.com":    "Headway",
			"scanhealthplan.com": "SCAN",
			"hsc.utah.edu":       "UUHP (University of Utah)",
			"utah.edu":           "UUHP (University of Utah)",
		},
		AllowedReporters: []string{
			// Elevance-Carelon
			"Kelli-Ann.Bailey@carelon.com",

			// FCHN (First Choice Health Network)
			"Cindy Bergley",
			"cbergley", // Jira username for Cindy Bergley
			"Abby Fuller",
			"Tanya Ramirez",
			"Steffany Taylor",

			// Premera
			"credentialing.updates@premera.com",

			// Headway
			"edna.villareal@findheadway.com",
			"luis.valdez@findheadway.com",
			"katie.cassidy@findheadway.com",
			"stephani.vasquez@findheadway.com",
			"gavin.green@findheadway.com",
			"valorie.reyes@findheadway.com",
			"amy.huh@findheadway.com",
			"Zara Aghajanyan",

			// SCAN
			"c.smith@scanhealthplan.com",
			"b.chan@scanhealthplan.com",
			"li.lopez@scanhealthplan.com",
			"a.liu@scanhealthplan.com",
			"EVo@scanhealthplan.com",
			"a.vuc@scanhealthplan.com",
			"mo.davila@scanhealthplan.com",
			"Carrie Black",

			// University of Utah Health Plan
			"Charlene Frail-McGeever",
			"Aimee.Kulp@hsc.utah.edu",
		},
		AllowedDomains: []string{
			"carelon.com",
			"findheadway.com",
			"headway.com",
			"scanhealthplan.com",
			"scan.com",
			"hsc.utah.edu",
			"utah.edu",
			"fchn.com",
			"firstchoicehealth.com",
			"premera.com",
		},
	}
}
