package packsvc

import "github.com/everaidhq/everaid/internal/pack"

func timer(seconds int) *int { return &seconds }

// seedRecords returns the curated starter set: four packs per category.
// Ids and timestamps are assigned at save time.
func seedRecords() []pack.Record {
	return []pack.Record{
		// Health
		{
			Title:      "Bleeding Control",
			OneLiner:   "Stop severe bleeding fast with direct pressure",
			Category:   pack.CategoryHealth,
			Urgency:    pack.RecordUrgencyEmergency,
			EstMinutes: 3,
			CTA:        "Act Now",
			Steps: []pack.RecordStep{
				{Title: "Apply direct pressure", Description: "Press firmly on the wound with a clean cloth or bandage. Do not lift to check.", TimerSeconds: timer(120)},
				{Title: "Elevate the wound", Description: "Raise the injured area above heart level if no fracture is suspected."},
				{Title: "Add more layers", Description: "If blood soaks through, add cloth on top. Never remove the first layer."},
				{Title: "Call emergency services", Description: "If bleeding does not slow after steady pressure, call for help immediately."},
			},
		},
		{
			Title:      "CPR for Adults",
			OneLiner:   "Chest compressions that keep blood moving",
			Category:   pack.CategoryHealth,
			Urgency:    pack.RecordUrgencyEmergency,
			EstMinutes: 5,
			CTA:        "Start CPR",
			Steps: []pack.RecordStep{
				{Title: "Check responsiveness", Description: "Tap the shoulders and shout. If no response and no normal breathing, start CPR."},
				{Title: "Call for help", Description: "Call emergency services or ask a bystander to. Put the phone on speaker."},
				{Title: "Start compressions", Description: "Push hard and fast in the center of the chest, 100-120 per minute, 2 inches deep.", TimerSeconds: timer(120)},
				{Title: "Continue until help arrives", Description: "Switch with another person every 2 minutes if possible. Do not stop."},
			},
		},
		{
			Title:      "Choking Response",
			OneLiner:   "Clear a blocked airway with abdominal thrusts",
			Category:   pack.CategoryHealth,
			Urgency:    pack.RecordUrgencyEmergency,
			EstMinutes: 2,
			CTA:        "Act Now",
			Steps: []pack.RecordStep{
				{Title: "Confirm choking", Description: "Ask if they can speak or cough. If they cannot, act immediately."},
				{Title: "Give 5 back blows", Description: "Lean them forward and strike firmly between the shoulder blades with your palm heel."},
				{Title: "Give 5 abdominal thrusts", Description: "Stand behind them, fist above the navel, pull sharply inward and upward."},
				{Title: "Repeat until clear", Description: "Alternate back blows and thrusts. If they lose consciousness, start CPR."},
			},
		},
		{
			Title:      "Burn First Aid",
			OneLiner:   "Cool the burn and protect the skin",
			Category:   pack.CategoryHealth,
			Urgency:    pack.RecordUrgencyWarning,
			EstMinutes: 10,
			CTA:        "Treat Burn",
			Steps: []pack.RecordStep{
				{Title: "Cool with running water", Description: "Hold the burn under cool (not cold) running water for 10 minutes.", TimerSeconds: timer(600)},
				{Title: "Remove tight items", Description: "Take off rings and watches near the burn before swelling starts."},
				{Title: "Cover loosely", Description: "Use a sterile non-stick dressing or clean cling film. Do not apply ice or butter."},
				{Title: "Know when to escalate", Description: "Seek medical care for burns larger than a palm, on the face, or that blister deeply."},
			},
		},

		// Survive
		{
			Title:      "House Fire Escape",
			OneLiner:   "Get out low and fast, then stay out",
			Category:   pack.CategorySurvive,
			Urgency:    pack.RecordUrgencyEmergency,
			EstMinutes: 3,
			CTA:        "Escape Now",
			Steps: []pack.RecordStep{
				{Title: "Stay low", Description: "Crawl below the smoke. The cleanest air is near the floor."},
				{Title: "Check doors before opening", Description: "Feel the door with the back of your hand. If hot, use another exit."},
				{Title: "Get out and stay out", Description: "Leave belongings. Never go back inside for anything."},
				{Title: "Call from outside", Description: "Once safe, call emergency services and report anyone still inside."},
			},
		},
		{
			Title:      "Earthquake Safety",
			OneLiner:   "Drop, cover, and hold on until shaking stops",
			Category:   pack.CategorySurvive,
			Urgency:    pack.RecordUrgencyEmergency,
			EstMinutes: 5,
			CTA:        "Take Cover",
			Steps: []pack.RecordStep{
				{Title: "Drop and cover", Description: "Get under a sturdy table. Protect your head and neck with your arms."},
				{Title: "Hold on", Description: "Grip your shelter and stay put until the shaking fully stops.", TimerSeconds: timer(60)},
				{Title: "Check for hazards", Description: "Watch for broken glass, gas smells, and damaged wiring before moving."},
				{Title: "Expect aftershocks", Description: "Move to open ground if outside. Stay away from damaged structures."},
			},
		},
		{
			Title:      "Power Outage Plan",
			OneLiner:   "Stay safe and warm when the grid goes down",
			Category:   pack.CategorySurvive,
			Urgency:    pack.RecordUrgencyWarning,
			EstMinutes: 15,
			CTA:        "Get Ready",
			Steps: []pack.RecordStep{
				{Title: "Light safely", Description: "Use flashlights, not candles. Save phone battery by dimming the screen."},
				{Title: "Protect your food", Description: "Keep fridge and freezer doors closed. A full freezer holds 48 hours."},
				{Title: "Unplug electronics", Description: "Prevent surge damage when power returns. Leave one lamp on as a signal."},
				{Title: "Stay warm or cool", Description: "Layer clothing in cold weather. Never run generators or grills indoors."},
			},
		},
		{
			Title:      "Flood Response",
			OneLiner:   "Move to high ground and avoid moving water",
			Category:   pack.CategorySurvive,
			Urgency:    pack.RecordUrgencyEmergency,
			EstMinutes: 10,
			CTA:        "Move Now",
			Steps: []pack.RecordStep{
				{Title: "Get to high ground", Description: "Move uphill or to an upper floor immediately. Do not wait for instructions."},
				{Title: "Avoid floodwater", Description: "Six inches of moving water can knock you down. Never walk or drive through it."},
				{Title: "Cut the power", Description: "If safe, switch off electricity at the main breaker before water reaches outlets."},
				{Title: "Signal for rescue", Description: "If trapped, go to the roof, not the attic. Signal with light or bright cloth."},
			},
		},

		// Fix
		{
			Title:      "Flat Tire Change",
			OneLiner:   "Swap to the spare in under half an hour",
			Category:   pack.CategoryFix,
			Urgency:    pack.RecordUrgencyInfo,
			EstMinutes: 25,
			CTA:        "Fix It",
			Steps: []pack.RecordStep{
				{Title: "Get to safety", Description: "Pull well off the road on firm, level ground. Hazard lights on, parking brake set."},
				{Title: "Loosen the lug nuts", Description: "Break each nut loose a half turn while the wheel is still on the ground."},
				{Title: "Jack and swap", Description: "Lift at the frame jack point, remove the flat, mount the spare."},
				{Title: "Tighten in a star pattern", Description: "Lower the car, then torque nuts in a crossing pattern. Check spare pressure soon."},
			},
		},
		{
			Title:      "Dead Car Battery",
			OneLiner:   "Jump start safely with cables and a donor car",
			Category:   pack.CategoryFix,
			Urgency:    pack.RecordUrgencyInfo,
			EstMinutes: 15,
			CTA:        "Jump It",
			Steps: []pack.RecordStep{
				{Title: "Position the donor car", Description: "Park close but not touching. Both cars off, parking brakes set."},
				{Title: "Connect the cables", Description: "Red to dead positive, red to donor positive, black to donor negative, black to bare metal on the dead car."},
				{Title: "Start and wait", Description: "Start the donor car, let it run a few minutes, then try the dead car.", TimerSeconds: timer(180)},
				{Title: "Disconnect in reverse", Description: "Remove cables in reverse order. Drive 20 minutes to recharge."},
			},
		},
		{
			Title:      "Burst Pipe Shutoff",
			OneLiner:   "Stop the water before it wrecks the house",
			Category:   pack.CategoryFix,
			Urgency:    pack.RecordUrgencyWarning,
			EstMinutes: 10,
			CTA:        "Stop Leak",
			Steps: []pack.RecordStep{
				{Title: "Close the main valve", Description: "Find the main shutoff, usually near the meter or where the line enters the house. Turn clockwise."},
				{Title: "Drain the lines", Description: "Open the lowest taps in the house to empty remaining water from the pipes."},
				{Title: "Kill nearby power", Description: "If water is near outlets or appliances, switch off those circuits at the breaker."},
				{Title: "Contain and document", Description: "Bucket the leak, move valuables, photograph damage for insurance."},
			},
		},
		{
			Title:      "Tripped Breaker Reset",
			OneLiner:   "Restore power and find what tripped it",
			Category:   pack.CategoryFix,
			Urgency:    pack.RecordUrgencyInfo,
			EstMinutes: 10,
			CTA:        "Reset It",
			Steps: []pack.RecordStep{
				{Title: "Unplug the suspects", Description: "Disconnect devices on the dead circuit, especially anything that just started."},
				{Title: "Find the tripped breaker", Description: "Look for the switch sitting between ON and OFF in the panel."},
				{Title: "Reset firmly", Description: "Push the breaker fully OFF, then back to ON in one motion."},
				{Title: "Reintroduce the load", Description: "Plug devices back in one at a time. If it trips again, leave it off and call an electrician."},
			},
		},

		// Speak
		{
			Title:      "Emergency Spanish",
			OneLiner:   "Key phrases to get help in Spanish",
			Category:   pack.CategorySpeak,
			Urgency:    pack.RecordUrgencyInfo,
			EstMinutes: 10,
			CTA:        "Learn Now",
			Steps: []pack.RecordStep{
				{Title: "Call for help", Description: "\"¡Ayuda!\" (Help!) and \"Llame a una ambulancia\" (Call an ambulance)."},
				{Title: "Describe the emergency", Description: "\"Es una emergencia\" (It's an emergency). \"Estoy herido/a\" (I am injured)."},
				{Title: "Share your location", Description: "\"Estoy en...\" (I am at...). Point at a map or address if needed."},
				{Title: "Ask for a doctor", Description: "\"Necesito un médico\" (I need a doctor). \"¿Habla inglés?\" (Do you speak English?)."},
			},
		},
		{
			Title:      "Emergency French",
			OneLiner:   "Key phrases to get help in French",
			Category:   pack.CategorySpeak,
			Urgency:    pack.RecordUrgencyInfo,
			EstMinutes: 10,
			CTA:        "Learn Now",
			Steps: []pack.RecordStep{
				{Title: "Call for help", Description: "\"Au secours !\" (Help!) and \"Appelez une ambulance\" (Call an ambulance)."},
				{Title: "Describe the emergency", Description: "\"C'est une urgence\" (It's an emergency). \"Je suis blessé(e)\" (I am injured)."},
				{Title: "Share your location", Description: "\"Je suis à...\" (I am at...). Show an address or landmark."},
				{Title: "Ask for a doctor", Description: "\"J'ai besoin d'un médecin\" (I need a doctor). \"Parlez-vous anglais ?\" (Do you speak English?)."},
			},
		},
		{
			Title:      "Public Speaking Nerves",
			OneLiner:   "Calm down and deliver in front of a crowd",
			Category:   pack.CategorySpeak,
			Urgency:    pack.RecordUrgencyInfo,
			EstMinutes: 15,
			CTA:        "Get Started",
			Steps: []pack.RecordStep{
				{Title: "Breathe before you begin", Description: "Four counts in, hold four, out four. Repeat three times backstage.", TimerSeconds: timer(60)},
				{Title: "Open with your anchor line", Description: "Memorize only the first two sentences. A strong start settles everything after."},
				{Title: "Slow down on purpose", Description: "Speak slower than feels natural. Pauses read as confidence, not hesitation."},
				{Title: "Find friendly faces", Description: "Pick three people in different sections and rotate eye contact between them."},
			},
		},
		{
			Title:      "De-escalate an Argument",
			OneLiner:   "Lower the temperature when talk turns hostile",
			Category:   pack.CategorySpeak,
			Urgency:    pack.RecordUrgencyWarning,
			EstMinutes: 10,
			CTA:        "Defuse It",
			Steps: []pack.RecordStep{
				{Title: "Lower your voice", Description: "Speak slower and quieter than the other person. Matching volume escalates."},
				{Title: "Acknowledge first", Description: "\"I hear you, that sounds frustrating.\" Validation is not agreement."},
				{Title: "Ask, don't assert", Description: "\"What would make this right?\" moves the exchange from blame to fixing."},
				{Title: "Take a break if needed", Description: "If it keeps heating up, name it: \"Let's pick this up in ten minutes.\""},
			},
		},
	}
}
