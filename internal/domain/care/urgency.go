package care

// UrgencyOrder es la prioridad fija para el badge. TREAT no participa.
var UrgencyOrder = []CareType{
	CareTypeFeed,
	CareTypeWater,
	CareTypeLitter,
	CareTypePlay,
	CareTypeBrush,
	CareTypeNails,
	CareTypeVaccine,
}

// SelectUrgent devuelve el primer tipo necesitado Y permitido ahora.
// Nunca sugiere algo que el cooldown bloquea.
func SelectUrgent(needs, allowed Flags) (CareType, bool) {
	for _, t := range UrgencyOrder {
		if needs.Get(t) && allowed.Get(t) {
			return t, true
		}
	}
	return "", false
}
