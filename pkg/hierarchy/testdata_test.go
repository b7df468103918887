package hierarchy

const sampleHierarchy = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" content-desc="" bounds="[0,0][1080,1920]" clickable="false">
    <node index="0" text="Login" resource-id="com.app:id/login_btn" class="android.widget.Button" content-desc="" bounds="[100,200][300,280]" clickable="true" long-clickable="false"/>
    <node index="1" text="Sign Up" resource-id="com.app:id/signup_btn" class="android.widget.Button" content-desc="Create account" bounds="[100,300][300,380]" clickable="true" long-clickable="true"/>
    <node index="2" text="" resource-id="com.app:id/container" class="android.widget.LinearLayout" content-desc="" bounds="[0,400][1080,800]" clickable="false">
      <node index="0" text="Username" resource-id="com.app:id/label" class="android.widget.TextView" content-desc="" bounds="[50,420][200,460]" clickable="false"/>
      <node index="1" text="" resource-id="com.app:id/input" class="android.widget.EditText" content-desc="" bounds="[50,470][500,530]" clickable="true"/>
      <node index="2" text="Login" resource-id="com.app:id/login_link" class="android.widget.TextView" content-desc="" bounds="[50,540][500,600]" clickable="true"/>
    </node>
  </node>
</hierarchy>`
