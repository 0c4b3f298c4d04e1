package projection

// classNames is the closed category enumeration; a category's class id is
// its index. Order is part of the label-file contract.
var classNames = [...]string{
	"human.pedestrian.adult",
	"human.pedestrian.child",
	"human.pedestrian.wheelchair",
	"human.pedestrian.stroller",
	"human.pedestrian.personal_mobility",
	"human.pedestrian.police_officer",
	"human.pedestrian.construction_worker",
	"animal",
	"vehicle.car",
	"vehicle.motorcycle",
	"vehicle.bicycle",
	"vehicle.bus.bendy",
	"vehicle.bus.rigid",
	"vehicle.truck",
	"vehicle.construction",
	"vehicle.emergency.ambulance",
	"vehicle.emergency.police",
	"vehicle.trailer",
	"movable_object.barrier",
	"movable_object.trafficcone",
	"movable_object.pushable_pullable",
	"movable_object.debris",
	"static_object.bicycle_rack",
}

var classIDs = func() map[string]int {
	m := make(map[string]int, len(classNames))
	for i, name := range classNames {
		m[name] = i
	}
	return m
}()

// NumClasses is the size of the class enumeration.
const NumClasses = len(classNames)

// ClassID returns the class id of a category name.
func ClassID(category string) (int, bool) {
	id, ok := classIDs[category]
	return id, ok
}

// ClassName returns the category name of a class id.
func ClassName(id int) (string, bool) {
	if id < 0 || id >= len(classNames) {
		return "", false
	}
	return classNames[id], true
}

// ClassNames returns the categories ordered by class id. The slice is a copy.
func ClassNames() []string {
	out := make([]string, len(classNames))
	copy(out, classNames[:])
	return out
}
