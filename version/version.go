package version

const APP_VERSION = "0.2.1"
