package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "VSAL Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Variant Store Abstraction Layer API!"
	SERVICE_DESCRIPTION ServiceInfo = "Variant query engine over per-dataset variant, genotype and sample tables."
	SERVICE_CONTACT     ServiceInfo = "mailto:vsal@garvan.org.au"

	SERVICE_ARTIFACT    ServiceInfo = "vsal"
	SERVICE_VERSION     ServiceInfo = "7.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("au.org.garvan:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
